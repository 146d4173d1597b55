package audio

import (
	"fmt"
	"time"
)

// Config configures the ffmpeg converter.
type Config struct {
	// Binary is the ffmpeg executable, resolved via PATH.
	Binary string `mapstructure:"binary"`
	// WorkDir is where per-conversion temp dirs are created. Empty means os.TempDir().
	WorkDir string `mapstructure:"work_dir"`
	// SampleRate is the output sample rate in Hz.
	SampleRate int `mapstructure:"sample_rate" validate:"gte=8000,lte=48000"`
	// Timeout bounds a single conversion.
	Timeout time.Duration `mapstructure:"timeout"`
	// GracePeriod is the SIGTERM to SIGKILL delay on cancellation.
	GracePeriod time.Duration `mapstructure:"grace_period"`
	// MaxConcurrent caps simultaneous ffmpeg processes. Zero means unlimited.
	MaxConcurrent int `mapstructure:"max_concurrent" validate:"gte=0"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = "ffmpeg"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = 2 * time.Second
	}
}

// Validate checks the configuration after defaults.
func (c *Config) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("audio.binary is required")
	}
	if c.SampleRate < 8000 || c.SampleRate > 48000 {
		return fmt.Errorf("audio.sample_rate must be between 8000 and 48000")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("audio.timeout must be positive")
	}
	return nil
}
