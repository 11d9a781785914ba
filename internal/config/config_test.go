package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Clear environment and set only required var
	os.Clearenv()
	setEnv(t, "EXAMTRAIL_JWT_SECRET", "test-secret-key-32-bytes-long!!!")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/examtrail.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/examtrail.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.OrgDomain != "umbc.edu" {
		t.Errorf("OrgDomain = %q, want %q", cfg.OrgDomain, "umbc.edu")
	}
	if cfg.OrgTag != "umbc" {
		t.Errorf("OrgTag = %q, want %q", cfg.OrgTag, "umbc")
	}
	if len(cfg.AdminEmails) != 0 {
		t.Errorf("AdminEmails = %v, want empty", cfg.AdminEmails)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("Load() succeeded without EXAMTRAIL_JWT_SECRET")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "EXAMTRAIL_JWT_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Error("Load() succeeded with short secret")
	}
}

func TestLoad_WeakSecretRejected(t *testing.T) {
	os.Clearenv()
	setEnv(t, "EXAMTRAIL_JWT_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted a known default secret")
	}
}

func TestLoad_AdminEmails(t *testing.T) {
	os.Clearenv()
	setEnv(t, "EXAMTRAIL_JWT_SECRET", "test-secret-key-32-bytes-long!!!")
	setEnv(t, "EXAMTRAIL_ADMIN_EMAILS", "analyst@example.edu, demo@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := []string{"analyst@example.edu", "demo@example.com"}
	if len(cfg.AdminEmails) != len(want) {
		t.Fatalf("AdminEmails = %v, want %v", cfg.AdminEmails, want)
	}
	for i := range want {
		if cfg.AdminEmails[i] != want[i] {
			t.Errorf("AdminEmails[%d] = %q, want %q (whitespace should be trimmed)", i, cfg.AdminEmails[i], want[i])
		}
	}
}

func TestServerAddr(t *testing.T) {
	cfg := Config{ServerHost: "0.0.0.0", ServerPort: 9090}
	if got := cfg.ServerAddr(); got != "0.0.0.0:9090" {
		t.Errorf("ServerAddr() = %q, want %q", got, "0.0.0.0:9090")
	}
}
