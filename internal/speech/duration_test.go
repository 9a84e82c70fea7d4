package speech

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeDuration_MissingFile(t *testing.T) {
	_, err := ProbeDuration(context.Background(), filepath.Join(t.TempDir(), "none.wav"))
	assert.Error(t, err)
}
