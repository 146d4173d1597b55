package bot

import (
	"fmt"
	"time"

	"github.com/kbukum/voicescribe/transcription"
)

// DefaultHandlerTimeout leaves room for download and conversion on top of
// the default ten minute long-running recognition.
const DefaultHandlerTimeout = 12 * time.Minute

// Config configures message handling.
type Config struct {
	// MaxAudioMinutes is the global transcription quota. Zero means unlimited.
	MaxAudioMinutes float64 `mapstructure:"max_audio_minutes" validate:"gte=0"`
	// TopUsers is the length of the /globalstats leaderboard.
	TopUsers int `mapstructure:"top_users"`
	// Placeholder sends "Processing..." first and edits it into the result.
	Placeholder bool `mapstructure:"placeholder"`
	// HandlerTimeout bounds the handling of one message. It must exceed the
	// long-running recognition timeout.
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`

	// Speech holds the recognition options; filled from the speech section.
	Speech transcription.Options `mapstructure:"-"`
}

// ApplyDefaults fills zero values. MaxAudioMinutes and Placeholder are
// defaulted by the configuration loader since their zero values are valid.
func (c *Config) ApplyDefaults() {
	if c.TopUsers == 0 {
		c.TopUsers = 5
	}
	if c.HandlerTimeout == 0 {
		c.HandlerTimeout = DefaultHandlerTimeout
	}
	c.Speech.ApplyDefaults()
}

// Validate checks the configuration after defaults.
func (c *Config) Validate() error {
	if c.MaxAudioMinutes < 0 {
		return fmt.Errorf("bot.max_audio_minutes must be non-negative (got: %v)", c.MaxAudioMinutes)
	}
	if c.TopUsers < 0 {
		return fmt.Errorf("bot.top_users must be non-negative (got: %d)", c.TopUsers)
	}
	return c.Speech.Validate()
}
