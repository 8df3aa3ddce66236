package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emirkorkmazz/lokanta-api/auth"
)

func validConfig() *auth.BaseConfig {
	return &auth.BaseConfig{
		AccessSigningKey:  "access-signing-key-for-tests",
		RefreshSigningKey: "refresh-signing-key-for-tests",
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing access key fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.AccessSigningKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing refresh key fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.RefreshSigningKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("short keys fail", func(t *testing.T) {
		cfg := validConfig()
		cfg.AccessSigningKey = "too-short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("identical keys fail", func(t *testing.T) {
		cfg := validConfig()
		cfg.RefreshSigningKey = cfg.AccessSigningKey
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative TTL fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.AccessTokenTTL = -time.Minute
		assert.Error(t, cfg.Validate())
	})
}

func TestConfigDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, auth.DefaultAccessTokenTTL, cfg.GetAccessTokenTTL())
	assert.Equal(t, auth.DefaultRefreshTokenTTL, cfg.GetRefreshTokenTTL())
	assert.Equal(t, auth.DefaultContextKey, cfg.GetContextKey())
	assert.Equal(t, auth.DefaultAuthScheme, cfg.GetAuthScheme())
	assert.Equal(t, auth.DefaultBcryptCost, cfg.GetBcryptCost())
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("refuses to load without signing keys", func(t *testing.T) {
		t.Setenv("LOKANTA_ACCESS_SIGNING_KEY", "")
		t.Setenv("LOKANTA_REFRESH_SIGNING_KEY", "")

		_, err := auth.ConfigFromEnv()
		assert.Error(t, err)
	})

	t.Run("loads keys and overrides from environment", func(t *testing.T) {
		t.Setenv("LOKANTA_ACCESS_SIGNING_KEY", "access-signing-key-from-env")
		t.Setenv("LOKANTA_REFRESH_SIGNING_KEY", "refresh-signing-key-from-env")
		t.Setenv("LOKANTA_TOKEN_ISSUER", "lokanta-api")
		t.Setenv("LOKANTA_ACCESS_TOKEN_TTL", "30m")
		t.Setenv("LOKANTA_REFRESH_TOKEN_TTL", "48h")

		cfg, err := auth.ConfigFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "access-signing-key-from-env", cfg.GetAccessSigningKey())
		assert.Equal(t, "refresh-signing-key-from-env", cfg.GetRefreshSigningKey())
		assert.Equal(t, "lokanta-api", cfg.GetIssuer())
		assert.Equal(t, 30*time.Minute, cfg.GetAccessTokenTTL())
		assert.Equal(t, 48*time.Hour, cfg.GetRefreshTokenTTL())
	})

	t.Run("rejects unparseable TTL", func(t *testing.T) {
		t.Setenv("LOKANTA_ACCESS_SIGNING_KEY", "access-signing-key-from-env")
		t.Setenv("LOKANTA_REFRESH_SIGNING_KEY", "refresh-signing-key-from-env")
		t.Setenv("LOKANTA_ACCESS_TOKEN_TTL", "not-a-duration")

		_, err := auth.ConfigFromEnv()
		assert.Error(t, err)
	})
}
