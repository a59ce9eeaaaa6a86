package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "identity.db", cfg.DatabaseFile)
	require.Equal(t, 168*time.Hour, cfg.TokenTTL)
	require.Equal(t, 5, cfg.ChallengeMaxUses)
	require.Equal(t, 5*time.Minute, cfg.OTPTTL)
	require.Equal(t, 30*time.Second, cfg.OTPSendInterval)
	require.Equal(t, SMSProviderLog, cfg.SMSProvider)
	require.False(t, cfg.DevOTPEnabled)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("IDENTITY_TOKEN_TTL", "1h")
	t.Setenv("OTP_MAX_ATTEMPTS", "3")
	t.Setenv("DEV_OTP_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, 3, cfg.OTPMaxAttempts)
	require.True(t, cfg.DevOTPEnabled)
}

func TestLoadConfigMalformed(t *testing.T) {
	t.Setenv("OTP_TTL", "soon")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		t.Helper()
		cfg, err := LoadConfig()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Port = 0 }, "PORT"},
		{"missing issuer", func(c *Config) { c.Issuer = "" }, "IDENTITY_ISSUER"},
		{"zero ttl", func(c *Config) { c.OTPTTL = 0 }, "OTP_TTL"},
		{"no uses", func(c *Config) { c.ChallengeMaxUses = 0 }, "CHALLENGE_MAX_USES"},
		{"unknown provider", func(c *Config) { c.SMSProvider = "pigeon" }, "SMS_PROVIDER"},
		{"smslocal without key", func(c *Config) { c.SMSProvider = SMSProviderSMSLocal }, "SMS_API_KEY"},
		{"dev codes with real sms", func(c *Config) {
			c.SMSProvider = SMSProviderSMSLocal
			c.SMSAPIKey = "k"
			c.DevOTPEnabled = true
		}, "DEV_OTP_ENABLED"},
		{"dev codes in prod", func(c *Config) {
			c.Env = "prod"
			c.DevOTPEnabled = true
		}, "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDSNSetsPragmasPerConnection(t *testing.T) {
	dsn := DSN("/data/identity.db")
	require.Contains(t, dsn, "file:/data/identity.db?")
	require.Contains(t, dsn, "foreign_keys%281%29")
	require.Contains(t, dsn, "journal_mode%28WAL%29")
}
