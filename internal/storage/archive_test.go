package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Vovarama1992/voice_pipeline/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUploader struct {
	key         string
	size        int64
	body        []byte
	contentType string
	err         error
}

func (f *fakeUploader) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	f.key, f.size, f.contentType = key, size, contentType
	f.body, _ = io.ReadAll(r)
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.local/bucket/" + key, nil
}

func TestArchiveStore_UploadsSavedFile(t *testing.T) {
	up := &fakeUploader{}
	store := NewArchiveStore(NewWAVStore(t.TempDir(), 24000, zap.NewNop().Sugar()), up, "voice", zap.NewNop().Sugar())

	path, err := store.Save(context.Background(), "response_4.wav", speech.AudioBuffer{Samples: []int16{1, 2}})

	require.NoError(t, err)
	assert.Contains(t, path, "response_4.wav")
	assert.Equal(t, "voice/response_4.wav", up.key)
	assert.EqualValues(t, wavHeaderSize+4, up.size)
	assert.Len(t, up.body, wavHeaderSize+4)
	assert.Equal(t, "audio/wav", up.contentType)
}

func TestArchiveStore_UploadFailureKeepsLocalFile(t *testing.T) {
	up := &fakeUploader{err: errors.New("s3 down")}
	store := NewArchiveStore(NewWAVStore(t.TempDir(), 24000, zap.NewNop().Sugar()), up, "", zap.NewNop().Sugar())

	path, err := store.Save(context.Background(), "response_2.wav", speech.AudioBuffer{Samples: []int16{1}})

	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestArchiveStore_LocalFailurePropagates(t *testing.T) {
	up := &fakeUploader{}
	store := NewArchiveStore(NewWAVStore(t.TempDir(), 24000, zap.NewNop().Sugar()), up, "", zap.NewNop().Sugar())

	_, err := store.Save(context.Background(), "response_2.wav", speech.AudioBuffer{})

	assert.Error(t, err)
	assert.Empty(t, up.key)
}

func TestS3Client_BuildPublicURL(t *testing.T) {
	c := &s3Client{bucket: "b", host: "https://s3.example.com"}
	assert.Equal(t, "https://s3.example.com/b/voice/response%202.wav", c.buildPublicURL("voice/response 2.wav"))
}
