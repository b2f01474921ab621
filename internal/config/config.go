package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded from environment
// variables with flag overrides applied by the CLI.
type Config struct {
	// Capture
	SampleRate int     // samples/second for the input stream
	Window     int     // analysis window length in samples (power of two)
	Channels   int     // input channels, mixed down to mono
	Amplify    float64 // input gain

	// Detection
	Engine     string  // "acf" or "spectral"
	SilenceRMS float64 // frames quieter than this are skipped
	MaxHz      float64 // estimates above this are discarded

	// Scale
	Root string // starting root pitch class

	// Scheduling
	TickInterval time.Duration // pacing interval between ticks
}

// Load reads configuration from environment variables with sane
// defaults.
func Load() Config {
	return Config{
		SampleRate: envInt("SOLFEGE_SAMPLE_RATE", 44100),
		Window:     envInt("SOLFEGE_WINDOW", 2048),
		Channels:   envInt("SOLFEGE_CHANNELS", 1),
		Amplify:    envFloat("SOLFEGE_AMPLIFY", 8.0),

		Engine:     envStr("SOLFEGE_ENGINE", "acf"),
		SilenceRMS: envFloat("SOLFEGE_SILENCE_RMS", 0.01),
		MaxHz:      envFloat("SOLFEGE_MAX_HZ", 7000),

		Root: envStr("SOLFEGE_ROOT", "C"),

		TickInterval: time.Duration(envInt("SOLFEGE_TICK_MS", 16)) * time.Millisecond,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
