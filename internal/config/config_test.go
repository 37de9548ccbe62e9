package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setEnv applies vars for the duration of the test.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"SHELF_ADMIN_PASSWORD": "hunter2",
		"SHELF_SESSION_SECRET": "s3cret",
		"SHELF_STORE":          "memory",
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, baseEnv())

	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %q", cfg.ListenPort)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.CoverTimeout != 6*time.Second {
		t.Errorf("CoverTimeout = %v", cfg.CoverTimeout)
	}
	if cfg.DefaultCategory != "Book" || !cfg.AutoCover {
		t.Errorf("DefaultCategory = %q, AutoCover = %v", cfg.DefaultCategory, cfg.AutoCover)
	}
	if cfg.LoginBurst != 5 || cfg.LoginRefillPerMin != 10 {
		t.Errorf("rate limit = %d/%d", cfg.LoginBurst, cfg.LoginRefillPerMin)
	}
	if cfg.CORSOrigins != nil || cfg.AllowedHosts != nil || cfg.AllowedCIDRS != nil {
		t.Errorf("access lists should default to nil: %v %v %v", cfg.CORSOrigins, cfg.AllowedHosts, cfg.AllowedCIDRS)
	}
}

func TestLoadBackends(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantPanic bool
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name: "sheets with inline key",
			env: map[string]string{
				"SHELF_STORE":                      "sheets",
				"SHELF_GOOGLE_SHEET_ID":            "abc",
				"SHELF_GOOGLE_SERVICE_ACCOUNT_KEY": `{"type":"service_account"}`,
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.GoogleSheetID != "abc" {
					t.Errorf("GoogleSheetID = %q", cfg.GoogleSheetID)
				}
			},
		},
		{
			name:      "sheets without key",
			env:       map[string]string{"SHELF_STORE": "sheets", "SHELF_GOOGLE_SHEET_ID": "abc"},
			wantPanic: true,
		},
		{
			name:      "sheets without sheet id",
			env:       map[string]string{"SHELF_STORE": "Sheets", "SHELF_GOOGLE_SERVICE_ACCOUNT_KEY": "{}"},
			wantPanic: true,
		},
		{
			name: "redis",
			env:  map[string]string{"SHELF_STORE": "redis", "SHELF_REDIS_ADDR": "localhost:6379", "SHELF_REDIS_DB": "2"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
					t.Errorf("redis = %q/%d", cfg.RedisAddr, cfg.RedisDB)
				}
				if cfg.RedisConnectTimeout != 30*time.Second {
					t.Errorf("RedisConnectTimeout = %v", cfg.RedisConnectTimeout)
				}
			},
		},
		{
			name:      "redis without addr",
			env:       map[string]string{"SHELF_STORE": "redis"},
			wantPanic: true,
		},
		{
			name:      "unknown backend",
			env:       map[string]string{"SHELF_STORE": "postgres"},
			wantPanic: true,
		},
		{
			name:      "missing admin password",
			env:       map[string]string{"SHELF_ADMIN_PASSWORD": ""},
			wantPanic: true,
		},
		{
			name:      "missing session secret",
			env:       map[string]string{"SHELF_SESSION_SECRET": ""},
			wantPanic: true,
		},
		{
			name:      "zero login burst",
			env:       map[string]string{"SHELF_LOGIN_BURST": "0"},
			wantPanic: true,
		},
		{
			name: "access lists",
			env: map[string]string{
				"SHELF_CORS_ORIGINS":  "https://shelf.example.com, 'http://localhost:3000'",
				"SHELF_ALLOWED_CIDRS": "10.0.0.0/8,,1.2.3.4",
			},
			check: func(t *testing.T, cfg *Config) {
				if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://localhost:3000" {
					t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
				}
				if len(cfg.AllowedCIDRS) != 2 {
					t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, baseEnv())
			setEnv(t, tt.env)

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("Load() should have panicked")
					}
				}()
			}

			cfg := Load()
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestServiceAccountKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	inline := &Config{GoogleServiceAccount: `{"from":"env"}`, GoogleServiceFile: path}
	if got, err := inline.ServiceAccountKey(); err != nil || string(got) != `{"from":"env"}` {
		t.Errorf("inline key = %s, %v", got, err)
	}

	file := &Config{GoogleServiceFile: path}
	if got, err := file.ServiceAccountKey(); err != nil || string(got) != `{"from":"file"}` {
		t.Errorf("file key = %s, %v", got, err)
	}

	missing := &Config{GoogleServiceFile: filepath.Join(t.TempDir(), "nope.json")}
	if _, err := missing.ServiceAccountKey(); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := (&Config{}).ServiceAccountKey(); err == nil {
		t.Error("no key should fail")
	}
}

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		wantPanic bool
	}{
		{name: "variable set", key: "SHELF_TEST_VAR", value: "test_value"},
		{name: "variable not set", key: "SHELF_TEST_VAR_MISSING", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{name: "valid duration", value: "5s", def: time.Second, expected: 5 * time.Second},
		{name: "invalid duration uses default", value: "invalid", def: 10 * time.Second, expected: 10 * time.Second},
		{name: "missing variable uses default", def: 15 * time.Second, expected: 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SHELF_TEST_DURATION", tt.value)
			if result := mustDuration("SHELF_TEST_DURATION", tt.def); result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", value: "true", expected: true},
		{name: "false value", value: "false", def: true, expected: false},
		{name: "invalid value uses default", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SHELF_TEST_BOOL", tt.value)
			if result := mustBool("SHELF_TEST_BOOL", tt.def); result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}
