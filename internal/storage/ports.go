package storage

import (
	"context"
	"io"

	"github.com/Vovarama1992/voice_pipeline/internal/speech"
)

// AudioStore persists a synthesized reply and returns where it was written.
type AudioStore interface {
	Save(ctx context.Context, name string, buf speech.AudioBuffer) (string, error)
}

// ObjectUploader is the low-level object storage client.
type ObjectUploader interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (publicURL string, err error)
}
