// Package config loads the application configuration from the environment
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/globomantics/cms/pkg/cookie"
	"github.com/globomantics/cms/pkg/db"
	"github.com/globomantics/cms/pkg/logger"
	"github.com/globomantics/cms/pkg/mailer"
	"github.com/globomantics/cms/pkg/mailer/resend"
	"github.com/globomantics/cms/pkg/redis"
	"github.com/globomantics/cms/pkg/storage"
)

// DevSecretKey is the development default. Production sets SECRET_KEY.
const DevSecretKey = "globomantics-development-secret-key-change-me"

var (
	ErrParse   = errors.New("config: failed to parse")
	ErrInvalid = errors.New("config: invalid configuration")
	ErrFile    = errors.New("config: failed to read config file")
)

// Config is the root configuration.
type Config struct {
	Address   string   `env:"ADDRESS" envDefault:":8080"`
	SecretKey string   `env:"SECRET_KEY" envDefault:"globomantics-development-secret-key-change-me"`
	Languages []string `env:"LANGUAGES" envDefault:"en,de" envSeparator:","`

	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"60s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxUploadSize   int64         `env:"MAX_UPLOAD_SIZE" envDefault:"16777216"`
	JobWorkers      int           `env:"JOB_WORKERS" envDefault:"10"`

	// PolicyFile replaces the embedded authorization policy when set.
	PolicyFile string `env:"AUTHZ_POLICY_FILE"`

	Session SessionConfig
	DB      db.Config
	Redis   redis.Config
	Storage storage.Config
	Mail    mailer.Config
	Resend  resend.Config
	Log     logger.Config
}

// SessionConfig controls session lifetime and cookie attributes.
type SessionConfig struct {
	TTL         time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RememberTTL time.Duration `env:"SESSION_REMEMBER_TTL" envDefault:"720h"`
	Domain      string        `env:"SESSION_DOMAIN"`
	Secure      bool          `env:"SESSION_SECURE" envDefault:"false"`
	// Fingerprint is one of disabled, warn, reject.
	Fingerprint string `env:"SESSION_FINGERPRINT" envDefault:"warn"`
}

// Load reads the configuration. Values from file (YAML, optional) are used
// where the environment does not set the same key. Keys in the file are
// the environment names in any case; nested maps join with "_", so
// "database: {url: ...}" sets DATABASE_URL.
func Load(file string) (*Config, error) {
	environ, err := environment(file)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if err := cookie.ValidateSecret(c.SecretKey); err != nil {
		errs = append(errs, fmt.Errorf("SECRET_KEY: %w", err))
	}
	if len(c.Languages) == 0 {
		errs = append(errs, errors.New("LANGUAGES: at least one language is required"))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE: must be positive"))
	}
	switch c.Session.Fingerprint {
	case "disabled", "warn", "reject":
	default:
		errs = append(errs, fmt.Errorf("SESSION_FINGERPRINT: unknown mode %q", c.Session.Fingerprint))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalid}, errs...)...)
	}
	return nil
}

// IsDevSecret reports whether the development secret is in use.
func (c *Config) IsDevSecret() bool { return c.SecretKey == DevSecretKey }

func environment(file string) (map[string]string, error) {
	out := make(map[string]string)
	if file != "" {
		v := viper.New()
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFile, file, err)
		}
		for _, key := range v.AllKeys() {
			name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
			if val := v.Get(key); val != nil {
				out[name] = stringify(val)
			}
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out, nil
}

func stringify(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}
