package config

import "testing"

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("EMAIL_ENABLED", "false")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173")
	t.Setenv("PREFERENCE_STORE", "postgres")
	t.Setenv("REDIS_URL", "")
	t.Setenv("CORS_ALLOW_ALL", "false")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr == "" {
		t.Fatal("expected default HTTP address")
	}
	if cfg.MinioBucketCreativeAssets != "creative-assets" {
		t.Fatalf("unexpected bucket default %q", cfg.MinioBucketCreativeAssets)
	}
	if cfg.IsRedisEnabled() {
		t.Fatal("redis should be disabled without REDIS_URL")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoadRedisPreferenceStoreNeedsRedis(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PREFERENCE_STORE", "redis")
	t.Setenv("REDIS_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when redis preference store has no REDIS_URL")
	}
}

func TestLoadWildcardCORSRejectsCredentials(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard CORS with credentials")
	}
}

func TestLoadSMTPProviderNeedsHost(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("EMAIL_ENABLED", "true")
	t.Setenv("EMAIL_PROVIDER", "smtp")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("EMAIL_FROM_ADDRESS", "ops@example.com")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when smtp host missing")
	}
}
