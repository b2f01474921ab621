package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/EternalUpdate/solfege-tuner/internal/audio"
	"github.com/EternalUpdate/solfege-tuner/internal/config"
	"github.com/EternalUpdate/solfege-tuner/internal/pitch"
	"github.com/EternalUpdate/solfege-tuner/internal/tuner"
	"github.com/EternalUpdate/solfege-tuner/internal/ui"
)

func main() {
	cfg := config.Load()

	root := &cobra.Command{
		Use:   "solfege-tuner",
		Short: "Real-time pitch detection mapped to movable-doh solfège",
		Long: "solfege-tuner listens to the default microphone, estimates the " +
			"fundamental frequency of what it hears, and shows the note and its " +
			"movable-doh solfège syllable relative to a chosen root.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&cfg.Root, "root", "r", cfg.Root, "root pitch class (C, Db/C#, D, ...)")
	flags.StringVarP(&cfg.Engine, "engine", "e", cfg.Engine, "detection engine: acf or spectral")
	flags.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "capture sample rate in Hz")
	flags.IntVar(&cfg.Window, "window", cfg.Window, "analysis window in samples")
	flags.Float64Var(&cfg.MaxHz, "max-hz", cfg.MaxHz, "discard estimates above this frequency")
	flags.Float64Var(&cfg.Amplify, "amplify", cfg.Amplify, "input gain")

	root.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "List capture-capable audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := audio.ListInputDevices()
			if err != nil {
				return err
			}
			for _, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-40s %d ch  %.0f Hz\n",
					marker, d.Name, d.Channels, d.SampleRate)
			}
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// The terminal belongs to bubbletea; keep log output out of it.
	logger := newLogger()

	capturer, err := audio.NewPortAudioCapturer(cfg.Window, cfg.SampleRate, cfg.Channels)
	if err != nil {
		return fmt.Errorf("create capturer: %w", err)
	}
	capturer.SetAmplification(float32(cfg.Amplify))

	estimator, err := newEstimator(cfg)
	if err != nil {
		return err
	}

	pacer := tuner.NewFramePacer(cfg.TickInterval)

	sched, err := tuner.NewScheduler(capturer, estimator, pacer, tuner.Config{
		Root:   cfg.Root,
		MaxHz:  cfg.MaxHz,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	p := tea.NewProgram(ui.NewModel(sched), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func newEstimator(cfg config.Config) (pitch.Estimator, error) {
	switch cfg.Engine {
	case "acf", "":
		return pitch.NewACFEstimator(cfg.SilenceRMS), nil
	case "spectral":
		return pitch.NewSpectralEstimator(cfg.SilenceRMS), nil
	}
	return nil, fmt.Errorf("unknown detection engine %q", cfg.Engine)
}

func newLogger() *slog.Logger {
	f, err := os.OpenFile("solfege-tuner.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		// Fall back to discarding; the UI owns stdout.
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	return slog.New(slog.NewTextHandler(f, nil))
}
