package storage

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Vovarama1992/voice_pipeline/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEncodeWAV_Header(t *testing.T) {
	pcm := make([]byte, 100)
	for i := range pcm {
		pcm[i] = byte(i)
	}

	wav := EncodeWAV(pcm, 24000)

	require.Len(t, wav, wavHeaderSize+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.EqualValues(t, 1, binary.LittleEndian.Uint16(wav[20:22]))
	assert.EqualValues(t, 1, binary.LittleEndian.Uint16(wav[22:24]))
	assert.EqualValues(t, 24000, binary.LittleEndian.Uint32(wav[24:28]))
	assert.EqualValues(t, 48000, binary.LittleEndian.Uint32(wav[28:32]))
	assert.EqualValues(t, 16, binary.LittleEndian.Uint16(wav[34:36]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.EqualValues(t, len(pcm), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[wavHeaderSize:])
}

func TestWAVStore_CreatesDirAndWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output", "nested")
	store := NewWAVStore(dir, 24000, zap.NewNop().Sugar())

	buf := speech.AudioBuffer{Samples: []int16{1, -1, 300}, SampleRate: 24000}
	path, err := store.Save(context.Background(), "response_2.wav", buf)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "response_2.wav"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.PCM16LE(), data[wavHeaderSize:])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWAVStore_RejectsEmptyBuffer(t *testing.T) {
	dir := t.TempDir()
	store := NewWAVStore(dir, 24000, zap.NewNop().Sugar())

	_, err := store.Save(context.Background(), "response_2.wav", speech.AudioBuffer{})

	assert.ErrorIs(t, err, speech.ErrEmptySynthesis)
	_, statErr := os.Stat(filepath.Join(dir, "response_2.wav"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWAVStore_StripsDirectoriesFromName(t *testing.T) {
	dir := t.TempDir()
	store := NewWAVStore(dir, 0, zap.NewNop().Sugar())

	path, err := store.Save(context.Background(), "../escape.wav", speech.AudioBuffer{Samples: []int16{1}})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.wav"), path)
}
