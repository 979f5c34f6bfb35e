package config

import "testing"

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	if _, err := Load(); err != ErrMissingDatabaseURL {
		t.Errorf("Load() error = %v, want ErrMissingDatabaseURL", err)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/medplus")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err != ErrMissingJWTSecret {
		t.Errorf("Load() error = %v, want ErrMissingJWTSecret", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/medplus")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVICE_ROLE_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.AccessTokenTTL.Seconds() != 900 {
		t.Errorf("AccessTokenTTL = %v, want 900s", cfg.AccessTokenTTL)
	}
	// Absent service credential is allowed at load time; provisioning
	// itself fails closed.
	if cfg.ServiceRoleKey != "" {
		t.Errorf("ServiceRoleKey = %q, want empty", cfg.ServiceRoleKey)
	}
}
