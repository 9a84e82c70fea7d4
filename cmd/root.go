package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Vovarama1992/voice_pipeline/internal/config"
	"github.com/Vovarama1992/voice_pipeline/internal/conversation"
	"github.com/Vovarama1992/voice_pipeline/internal/speech"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice-pipeline [audio_file ...]",
		Short: "Listen, think, speak: answer recorded speech with synthesized speech",
		Long: `Transcribes each audio file, asks the chat model for a reply in the
assistant's persona and speaks it into output/response_<n>.wav.
Several files are processed as successive turns of one conversation.
Without arguments the sample audio is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTurns,
	}
	cmd.AddCommand(newServeCmd(), newTelegramCmd())
	return cmd
}

func runTurns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "❌", err)
		return err
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	base, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "❌", err)
		return err
	}
	defer base.Sync()
	log := base.Sugar()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(out, "🎤 Initializing Voice Pipeline...")
	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "❌", err)
		return err
	}
	if a.replier.Offline() {
		fmt.Fprintln(out, "  ⚠️ Chat offline: replies echo the transcription")
	}
	fmt.Fprintln(out, "\n✅ Voice Pipeline initialized!")
	fmt.Fprintln(out)

	files := args
	demo := len(files) == 0
	if demo {
		if !fileExists(cfg.VoiceSample) {
			fmt.Fprintf(out, "❌ Sample audio not found: %s\n", cfg.VoiceSample)
			fmt.Fprintln(out, "Place an audio file in samples/sample.wav first")
			return nil
		}
		fmt.Fprintln(out, "📝 Demo mode - Processing sample audio...")
		files = []string{cfg.VoiceSample}
	}

	transcript := conversation.Transcript{}
	for _, f := range files {
		if !fileExists(f) {
			fmt.Fprintf(out, "❌ File not found: %s\n", f)
			return nil
		}
		describeInput(ctx, out, f)

		res, err := a.processor.ProcessTurn(ctx, f, transcript)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
			return err
		}
		transcript = res.Transcript

		if demo {
			fmt.Fprintf(out, "\n✅ Morwintar says: %s\n", res.Reply)
		} else {
			fmt.Fprintf(out, "\n✅ Response: %s\n", res.Reply)
		}
		if res.AudioPath != "" {
			fmt.Fprintf(out, "  ✓ Saved: %s (%s)\n\n", res.AudioPath, res.Audio.Duration().Round(10*time.Millisecond))
		} else {
			fmt.Fprintln(out, "  ✗ No audio for this turn")
			fmt.Fprintln(out)
		}
	}
	return nil
}

func describeInput(ctx context.Context, out io.Writer, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	line := fmt.Sprintf("Processing: %s (%s", path, humanize.Bytes(uint64(info.Size())))
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if d, err := speech.ProbeDuration(probeCtx, path); err == nil {
		line += ", " + d.Round(10*time.Millisecond).String()
	}
	fmt.Fprintln(out, line+")")
	fmt.Fprintln(out)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
