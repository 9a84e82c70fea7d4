package speech

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecodePCM16LE_RoundTripsAndDropsOddByte(t *testing.T) {
	raw := []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80, 0x7f}

	buf := DecodePCM16LE(raw, DefaultSampleRate)

	assert.Equal(t, []int16{1, -1, -32768}, buf.Samples)
	assert.Equal(t, raw[:6], buf.PCM16LE())
}

func TestAudioBuffer_Duration(t *testing.T) {
	buf := AudioBuffer{Samples: make([]int16, 12000), SampleRate: 24000}
	assert.Equal(t, 500*time.Millisecond, buf.Duration())

	assert.Zero(t, AudioBuffer{Samples: make([]int16, 10)}.Duration())
}
