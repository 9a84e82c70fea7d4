package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript_AppendDoesNotMutateReceiver(t *testing.T) {
	base := New(Turn{Role: RoleUser, Text: "salut"})

	a := base.Append(RoleAssistant, "bonjour")
	b := base.Append(RoleAssistant, "coucou")

	assert.Equal(t, 1, base.Len())
	require.Equal(t, 2, a.Len())
	require.Equal(t, 2, b.Len())
	assert.Equal(t, "bonjour", a.At(1).Text)
	assert.Equal(t, "coucou", b.At(1).Text)
}

func TestTranscript_AppendExchangeOrder(t *testing.T) {
	tr := Transcript{}.AppendExchange("hello", "hi there")

	require.Equal(t, 2, tr.Len())
	assert.Equal(t, Turn{Role: RoleUser, Text: "hello"}, tr.At(0))
	assert.Equal(t, Turn{Role: RoleAssistant, Text: "hi there"}, tr.At(1))
}

func TestTranscript_TurnsReturnsCopy(t *testing.T) {
	tr := New(Turn{Role: RoleUser, Text: "a"})
	turns := tr.Turns()
	turns[0].Text = "changed"

	assert.Equal(t, "a", tr.At(0).Text)
}

func TestTranscript_NewCopiesInput(t *testing.T) {
	in := []Turn{{Role: RoleUser, Text: "a"}}
	tr := New(in...)
	in[0].Text = "changed"

	assert.Equal(t, "a", tr.At(0).Text)
}

func TestTranscript_Last(t *testing.T) {
	_, ok := Transcript{}.Last()
	assert.False(t, ok)

	last, ok := Transcript{}.AppendExchange("q", "r").Last()
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, last.Role)
}

func TestTranscript_Tail(t *testing.T) {
	tr := Transcript{}.AppendExchange("1", "2").AppendExchange("3", "4")

	cases := []struct {
		n    int
		want int
	}{
		{0, 0},
		{-1, 0},
		{2, 2},
		{10, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tr.Tail(tc.n).Len(), "n=%d", tc.n)
	}
	assert.Equal(t, "3", tr.Tail(2).At(0).Text)
}

func TestTranscript_String(t *testing.T) {
	tr := Transcript{}.AppendExchange("hi", "hello")
	assert.Equal(t, "[USER] hi\n[ASSISTANT] hello", tr.String())
}
