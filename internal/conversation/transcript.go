package conversation

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged utterance of the conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is an ordered, append-only conversation history.
// It is a value: Append never modifies the receiver, it returns a new
// Transcript that shares nothing with it, so a transcript handed to one
// turn cannot be changed behind the caller's back.
type Transcript struct {
	turns []Turn
}

func New(turns ...Turn) Transcript {
	if len(turns) == 0 {
		return Transcript{}
	}
	cp := make([]Turn, len(turns))
	copy(cp, turns)
	return Transcript{turns: cp}
}

func (t Transcript) Len() int { return len(t.turns) }

func (t Transcript) IsEmpty() bool { return len(t.turns) == 0 }

// Turns returns a copy of the turns in insertion order.
func (t Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// At returns the i-th turn. It panics when i is out of range, like a slice index.
func (t Transcript) At(i int) Turn { return t.turns[i] }

// Last returns the most recent turn, ok=false on an empty transcript.
func (t Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

func (t Transcript) Append(role Role, text string) Transcript {
	out := make([]Turn, len(t.turns), len(t.turns)+1)
	copy(out, t.turns)
	return Transcript{turns: append(out, Turn{Role: role, Text: text})}
}

// AppendExchange appends a user turn followed by the assistant's answer.
func (t Transcript) AppendExchange(user, assistant string) Transcript {
	out := make([]Turn, len(t.turns), len(t.turns)+2)
	copy(out, t.turns)
	out = append(out,
		Turn{Role: RoleUser, Text: user},
		Turn{Role: RoleAssistant, Text: assistant},
	)
	return Transcript{turns: out}
}

// Tail returns the last n turns as a new transcript.
func (t Transcript) Tail(n int) Transcript {
	if n >= len(t.turns) {
		return New(t.turns...)
	}
	if n <= 0 {
		return Transcript{}
	}
	return New(t.turns[len(t.turns)-n:]...)
}

// String renders the transcript with [USER]/[ASSISTANT] labels, one turn per line.
func (t Transcript) String() string {
	var b strings.Builder
	for i, turn := range t.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[")
		b.WriteString(strings.ToUpper(string(turn.Role)))
		b.WriteString("] ")
		b.WriteString(turn.Text)
	}
	return b.String()
}
