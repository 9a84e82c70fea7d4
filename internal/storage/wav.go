package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vovarama1992/voice_pipeline/internal/speech"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	wavHeaderSize    = 44
	wavFmtChunkSize  = 16
	wavBitsPerSample = 16
	wavChannels      = 1
)

// WAVStore writes mono 16-bit PCM WAV files at a fixed sample rate.
type WAVStore struct {
	dir        string
	sampleRate int
	log        *zap.SugaredLogger
}

func NewWAVStore(dir string, sampleRate int, log *zap.SugaredLogger) *WAVStore {
	if sampleRate <= 0 {
		sampleRate = speech.DefaultSampleRate
	}
	return &WAVStore{dir: dir, sampleRate: sampleRate, log: log}
}

func (s *WAVStore) Dir() string { return s.dir }

func (s *WAVStore) Save(ctx context.Context, name string, buf speech.AudioBuffer) (string, error) {
	if buf.IsEmpty() {
		return "", fmt.Errorf("save %s: %w", name, speech.ErrEmptySynthesis)
	}
	if buf.SampleRate != 0 && buf.SampleRate != s.sampleRate {
		s.log.Warnw("sample rate mismatch, header uses store rate", "buffer", buf.SampleRate, "store", s.sampleRate)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	data := EncodeWAV(buf.PCM16LE(), s.sampleRate)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}

	s.log.Infow("✓ saved", "path", path, "size", humanize.Bytes(uint64(len(data))), "audio", buf.Duration())
	return path, nil
}

// EncodeWAV prefixes mono 16-bit PCM with a canonical 44-byte RIFF header.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	dataSize := len(pcm)
	byteRate := sampleRate * wavChannels * wavBitsPerSample / 8
	blockAlign := wavChannels * wavBitsPerSample / 8

	wav := make([]byte, wavHeaderSize+dataSize)

	copy(wav[0:4], "RIFF")
	binary.LittleEndian.PutUint32(wav[4:8], uint32(36+dataSize))
	copy(wav[8:12], "WAVE")

	copy(wav[12:16], "fmt ")
	binary.LittleEndian.PutUint32(wav[16:20], wavFmtChunkSize)
	binary.LittleEndian.PutUint16(wav[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(wav[22:24], wavChannels)
	binary.LittleEndian.PutUint32(wav[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(wav[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(wav[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(wav[34:36], wavBitsPerSample)

	copy(wav[36:40], "data")
	binary.LittleEndian.PutUint32(wav[40:44], uint32(dataSize))

	copy(wav[wavHeaderSize:], pcm)
	return wav
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.wav")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close audio: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename audio: %w", err)
	}
	return nil
}
