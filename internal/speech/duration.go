package speech

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ProbeDuration asks ffprobe for the length of an audio file.
// It fails when ffprobe is not installed; callers treat the value as informational.
func ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}
