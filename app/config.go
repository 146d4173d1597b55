package app

import (
	"fmt"
	"strings"

	"github.com/kbukum/voicescribe/audio"
	"github.com/kbukum/voicescribe/bot"
	"github.com/kbukum/voicescribe/config"
	"github.com/kbukum/voicescribe/database"
	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/observability"
	"github.com/kbukum/voicescribe/server"
	"github.com/kbukum/voicescribe/telegram"
	"github.com/kbukum/voicescribe/transcription"
	"github.com/kbukum/voicescribe/transcription/google"
	"github.com/kbukum/voicescribe/validation"
)

// ServiceName names the binary, its config directory and its log tag.
const ServiceName = "voicescribe"

// Config is the complete service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Telegram      telegram.Config       `yaml:"telegram" mapstructure:"telegram"`
	Google        google.Config         `yaml:"google" mapstructure:"google"`
	Speech        transcription.Options `yaml:"speech" mapstructure:"speech"`
	Audio         audio.Config          `yaml:"audio" mapstructure:"audio"`
	Bot           bot.Config            `yaml:"bot" mapstructure:"bot"`
	Database      database.Config       `yaml:"database" mapstructure:"database"`
	Server        server.Config         `yaml:"server" mapstructure:"server"`
	Observability observability.Config  `yaml:"observability" mapstructure:"observability"`
}

// Defaults are loader defaults for settings whose zero value is meaningful.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"name":                          ServiceName,
		"bot.max_audio_minutes":         50,
		"bot.placeholder":               true,
		"speech.punctuation":            true,
		"database.enabled":              true,
		"database.auto_migrate":         true,
		"telegram.drop_pending_updates": true,
	}
}

// EnvBindings are environment variables outside the section_key naming.
func EnvBindings() map[string]string {
	return map[string]string{
		"database.path":         "DB_PATH",
		"bot.max_audio_minutes": "MAX_AUDIO_MINUTES",
	}
}

// Load reads the configuration from config.yml, .env and the environment.
func Load(opts ...config.LoaderOption) (*Config, error) {
	var cfg Config
	opts = append([]config.LoaderOption{
		config.WithDefaults(Defaults()),
		config.WithEnvBindings(EnvBindings()),
	}, opts...)
	if err := config.LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, apperrors.ConfigInvalid("config", err.Error()).WithCause(err)
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values in every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Telegram.ApplyDefaults()
	c.Google.ApplyDefaults()
	c.Speech.ApplyDefaults()
	c.Audio.ApplyDefaults()
	c.Bot.Speech = c.Speech
	c.Bot.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the configuration. The bot token and an existing
// credentials file are required. Every failure is CONFIG_INVALID.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("", validation.Validate(c))
	v.Required("google.application_credentials", c.Google.CredentialsFile).
		FileExists("google.application_credentials", c.Google.CredentialsFile)

	sections := []struct {
		name string
		fn   func() error
	}{
		{"config", c.ServiceConfig.Validate},
		{"telegram", c.Telegram.Validate},
		{"google", c.Google.Validate},
		{"speech", c.Speech.Validate},
		{"audio", c.Audio.Validate},
		{"bot", c.Bot.Validate},
		{"database", c.Database.Validate},
		{"server", c.Server.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, s := range sections {
		if hasFieldPrefix(v.Errors(), s.name+".") {
			continue
		}
		if err := s.fn(); err != nil {
			v.AddError(s.name, err.Error())
		}
	}

	if !hasFieldPrefix(v.Errors(), "bot.") && !hasFieldPrefix(v.Errors(), "google.") &&
		c.Bot.HandlerTimeout <= c.Google.LongRunningTimeout {
		v.AddError("bot.handler_timeout", fmt.Sprintf("must exceed google.long_running_timeout (%s <= %s)",
			c.Bot.HandlerTimeout, c.Google.LongRunningTimeout))
	}

	verr := v.Validate()
	if verr == nil {
		return nil
	}
	field := ""
	if fields := v.Errors(); len(fields) > 0 {
		field = fields[0].Field
	}
	return apperrors.ConfigInvalid(field, verr.Message).
		WithDetail("fields", v.Errors()).
		WithCause(verr)
}

func hasFieldPrefix(fields []validation.FieldError, prefix string) bool {
	for _, f := range fields {
		if strings.HasPrefix(f.Field, prefix) {
			return true
		}
	}
	return false
}

// Summary returns the non-secret settings for the startup log.
func (c *Config) Summary() map[string]interface{} {
	return map[string]interface{}{
		"environment":       c.Environment,
		"telegram_token":    logger.MaskSecret(c.Telegram.Token),
		"credentials_file":  c.Google.CredentialsFile,
		"language":          c.Speech.Language,
		"model":             c.Speech.Model,
		"max_audio_minutes": fmt.Sprintf("%g", c.Bot.MaxAudioMinutes),
		"database":          c.Database.Path,
		"http_server":       c.Server.Enabled,
	}
}
