package speech

import "context"

// Recognizer turns a recorded audio file into text.
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// Synthesizer turns text into a waveform spoken with the voice of referenceVoice.
// Providers that cannot clone voices ignore the sample.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, referenceVoice, language string) (AudioBuffer, error)
}
