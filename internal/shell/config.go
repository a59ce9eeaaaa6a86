package shell

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/caarlos0/env/v10"
)

// Config is the terminal client's environment.
type Config struct {
	APIURL             string `env:"FOODCAR_API_URL" envDefault:"http://localhost:8080"`
	SessionFile        string `env:"FOODCAR_SESSION_FILE"` // defaults to <user config dir>/foodcar/session
	ChallengeContainer string `env:"FOODCAR_CHALLENGE_CONTAINER" envDefault:"recaptcha-container"`

	// DevCodes prints the code from the identity service's dev sink after
	// every send. Only works against a service with DEV_OTP_ENABLED.
	DevCodes bool `env:"FOODCAR_DEV_CODES"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("FOODCAR_SESSION_FILE is unset and no user config dir: %w", err)
		}
		cfg.SessionFile = filepath.Join(dir, "foodcar", "session")
	}
	if cfg.ChallengeContainer == "" {
		cfg.ChallengeContainer = phoneauth.DefaultContainerID
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("FOODCAR_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if c.SessionFile == "" {
		return errors.New("FOODCAR_SESSION_FILE is required")
	}
	return nil
}
