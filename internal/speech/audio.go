package speech

import (
	"encoding/binary"
	"time"
)

const DefaultSampleRate = 24000

// AudioBuffer is a decoded mono waveform of signed 16-bit samples.
type AudioBuffer struct {
	Samples    []int16
	SampleRate int
}

// DecodePCM16LE decodes raw little-endian 16-bit mono PCM. A trailing odd byte is dropped.
func DecodePCM16LE(raw []byte, sampleRate int) AudioBuffer {
	n := len(raw) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return AudioBuffer{Samples: samples, SampleRate: sampleRate}
}

// PCM16LE encodes the samples back to little-endian bytes.
func (b AudioBuffer) PCM16LE() []byte {
	out := make([]byte, 2*len(b.Samples))
	for i, s := range b.Samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

func (b AudioBuffer) IsEmpty() bool { return len(b.Samples) == 0 }

func (b AudioBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}
