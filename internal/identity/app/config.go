package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// SMS providers.
const (
	SMSProviderLog      = "log"
	SMSProviderSMSLocal = "smslocal"
)

type Config struct {
	Env                  string        `env:"ENV" envDefault:"dev"`          // dev, test, prod
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`   // debug, info, warn, error
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`  // json, text
	Port                 int           `env:"PORT" envDefault:"8080"`        // HTTP listen port
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"15m"`

	Issuer         string        `env:"IDENTITY_ISSUER" envDefault:"foodcar-identity"`
	DatabaseFile   string        `env:"IDENTITY_DATABASE_FILE" envDefault:"identity.db"`
	PepperFile     string        `env:"IDENTITY_PEPPER_FILE" envDefault:"pepper"`
	SigningKeyFile string        `env:"IDENTITY_SIGNING_KEY_FILE" envDefault:"signing_key.pem"`
	TokenTTL       time.Duration `env:"IDENTITY_TOKEN_TTL" envDefault:"168h"`

	ChallengeTTL     time.Duration `env:"CHALLENGE_TTL" envDefault:"10m"`
	ChallengeMaxUses int           `env:"CHALLENGE_MAX_USES" envDefault:"5"`
	OTPTTL           time.Duration `env:"OTP_TTL" envDefault:"5m"`
	OTPMaxAttempts   int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
	OTPSendInterval  time.Duration `env:"OTP_SEND_INTERVAL" envDefault:"30s"`

	SMSProvider string `env:"SMS_PROVIDER" envDefault:"log"`
	SMSAPIKey   string `env:"SMS_API_KEY"`
	SMSBaseURL  string `env:"SMS_BASE_URL"`
	SMSSender   string `env:"SMS_SENDER" envDefault:"FOODCR"`

	// DevOTPEnabled mounts GET /v1/dev/otp/{id}. Only valid with the log
	// provider and outside prod.
	DevOTPEnabled bool `env:"DEV_OTP_ENABLED"`
}

// LoadConfig reads the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.Issuer == "" {
		errs = append(errs, errors.New("IDENTITY_ISSUER is required"))
	}
	for name, d := range map[string]time.Duration{
		"IDENTITY_TOKEN_TTL":    c.TokenTTL,
		"CHALLENGE_TTL":         c.ChallengeTTL,
		"OTP_TTL":               c.OTPTTL,
		"OTP_SEND_INTERVAL":     c.OTPSendInterval,
		"SHUTDOWN_GRACE_PERIOD": c.ShutdownGracePeriod,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.ChallengeMaxUses < 1 {
		errs = append(errs, errors.New("CHALLENGE_MAX_USES must be at least 1"))
	}
	if c.OTPMaxAttempts < 1 {
		errs = append(errs, errors.New("OTP_MAX_ATTEMPTS must be at least 1"))
	}

	switch c.SMSProvider {
	case SMSProviderLog:
	case SMSProviderSMSLocal:
		if c.SMSAPIKey == "" {
			errs = append(errs, errors.New("SMS_API_KEY is required for the smslocal provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("SMS_PROVIDER must be %q or %q, got %q", SMSProviderLog, SMSProviderSMSLocal, c.SMSProvider))
	}

	if c.DevOTPEnabled {
		if c.SMSProvider != SMSProviderLog {
			errs = append(errs, errors.New("DEV_OTP_ENABLED requires SMS_PROVIDER=log"))
		}
		if c.Env == "prod" {
			errs = append(errs, errors.New("DEV_OTP_ENABLED is not allowed in prod"))
		}
	}

	return errors.Join(errs...)
}
