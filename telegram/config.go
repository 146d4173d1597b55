package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxFileSize is the largest file the Bot API lets bots download.
const MaxFileSize = 20 << 20

// Config configures the Bot API client.
type Config struct {
	// Token is the bot token issued by BotFather.
	Token string `mapstructure:"token" validate:"required"`
	// APIEndpoint is a Sprintf pattern taking the token and method name.
	APIEndpoint string `mapstructure:"api_endpoint"`
	// FileEndpoint is a Sprintf pattern taking the token and file path.
	FileEndpoint string `mapstructure:"file_endpoint"`
	// PollTimeout is the long-polling timeout passed to getUpdates.
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	// RequestTimeout bounds every HTTP request except the long poll margin.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// MaxFileSize caps downloads in bytes.
	MaxFileSize int64 `mapstructure:"max_file_size"`
	// SendRate caps outgoing messages per second.
	SendRate float64 `mapstructure:"send_rate"`
	// DropPendingUpdates discards updates queued while the bot was offline.
	DropPendingUpdates bool `mapstructure:"drop_pending_updates"`
	// Debug enables the library's request logging.
	Debug bool `mapstructure:"debug"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.APIEndpoint == "" {
		c.APIEndpoint = tgbotapi.APIEndpoint
	}
	if c.FileEndpoint == "" {
		c.FileEndpoint = tgbotapi.FileEndpoint
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = 30 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = MaxFileSize
	}
	if c.SendRate == 0 {
		c.SendRate = 25
	}
}

// Validate checks the configuration after defaults.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.MaxFileSize < 0 || c.MaxFileSize > MaxFileSize {
		return fmt.Errorf("telegram.max_file_size must be between 0 and %d", MaxFileSize)
	}
	if c.PollTimeout < 0 {
		return fmt.Errorf("telegram.poll_timeout must not be negative")
	}
	return nil
}
