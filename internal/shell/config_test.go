package shell

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "http://localhost:8080", cfg.APIURL)
		require.Equal(t, "recaptcha-container", cfg.ChallengeContainer)
		require.Equal(t, filepath.Join("foodcar", "session"), filepath.Join(filepath.Base(filepath.Dir(cfg.SessionFile)), filepath.Base(cfg.SessionFile)))
		require.False(t, cfg.DevCodes)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("FOODCAR_API_URL", "https://id.foodcar.example")
		t.Setenv("FOODCAR_SESSION_FILE", "/tmp/foodcar-session")
		t.Setenv("FOODCAR_DEV_CODES", "true")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "https://id.foodcar.example", cfg.APIURL)
		require.Equal(t, "/tmp/foodcar-session", cfg.SessionFile)
		require.True(t, cfg.DevCodes)
	})

	t.Run("bad url", func(t *testing.T) {
		t.Setenv("FOODCAR_SESSION_FILE", "/tmp/foodcar-session")
		for _, u := range []string{"localhost:8080", "ftp://host", "http://"} {
			t.Setenv("FOODCAR_API_URL", u)
			_, err := LoadConfig()
			require.Error(t, err, u)
		}
	})
}
