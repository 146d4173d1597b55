package google

import (
	"fmt"
	"time"

	"github.com/kbukum/voicescribe/resilience"
)

// Config configures the Speech-to-Text client.
type Config struct {
	// CredentialsFile is the service account JSON key. Empty means
	// Application Default Credentials.
	CredentialsFile string `mapstructure:"application_credentials"`
	// Endpoint overrides the API endpoint (host:port).
	Endpoint string `mapstructure:"endpoint"`
	// RequestTimeout bounds a single synchronous recognition attempt.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// LongRunningTimeout bounds a long-running recognition including polling.
	LongRunningTimeout time.Duration `mapstructure:"long_running_timeout"`
	// SyncLimit is the longest audio sent through synchronous Recognize.
	SyncLimit time.Duration `mapstructure:"sync_limit"`
	// Resilience is the retry and circuit breaker policy.
	Resilience resilience.Settings `mapstructure:"resilience"`
}

// DefaultSyncLimit stays under the API's one-minute synchronous limit.
const DefaultSyncLimit = 55 * time.Second

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 60 * time.Second
	}
	if c.LongRunningTimeout == 0 {
		c.LongRunningTimeout = 10 * time.Minute
	}
	if c.SyncLimit == 0 {
		c.SyncLimit = DefaultSyncLimit
	}
	c.Resilience.ApplyDefaults()
}

// Validate checks the configuration after defaults.
func (c *Config) Validate() error {
	if c.SyncLimit > time.Minute {
		return fmt.Errorf("google.sync_limit must not exceed 1m")
	}
	if c.RequestTimeout <= 0 || c.LongRunningTimeout <= 0 {
		return fmt.Errorf("google timeouts must be positive")
	}
	return nil
}
