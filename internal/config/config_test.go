package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 8080},
		Yandex: YandexConfig{FolderID: "folder", APIKey: "key"},
		Index:  IndexConfig{BaseURL: "http://index.local"},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(_ *Config) {}, ""},
		{"missing port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"missing folder id", func(c *Config) { c.Yandex.FolderID = "" }, "yandex.folder_id"},
		{"missing api key", func(c *Config) { c.Yandex.APIKey = "" }, "yandex.folder_id"},
		{"missing index url", func(c *Config) { c.Index.BaseURL = "" }, "index.base_url"},
		{
			"empty rule substr",
			func(c *Config) {
				c.Search.DocTypeRules = []DocTypeRule{{Substr: "", Type: "law"}}
			},
			"doc_type_rules",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("read timeout default = %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("write timeout default = %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("shutdown timeout default = %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Yandex.TimeoutSec != 15 || cfg.Index.TimeoutSec != 15 {
		t.Errorf("backend timeout defaults = %d, %d", cfg.Yandex.TimeoutSec, cfg.Index.TimeoutSec)
	}
	if cfg.Index.MaxRetries != 2 {
		t.Errorf("max retries default = %d", cfg.Index.MaxRetries)
	}
	if cfg.Extract.TimeoutSec != 30 {
		t.Errorf("extract timeout default = %d", cfg.Extract.TimeoutSec)
	}
	if cfg.Cache.KeyPrefix != "docfuse:" || cfg.Cache.TTLSec != 3600 {
		t.Errorf("cache defaults = %q, %d", cfg.Cache.KeyPrefix, cfg.Cache.TTLSec)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{WriteTimeoutSec: 120}, Cache: CacheConfig{KeyPrefix: "other:"}}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("explicit write timeout overwritten: %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cache.KeyPrefix != "other:" {
		t.Errorf("explicit key prefix overwritten: %q", cfg.Cache.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCFUSE_TEST_VAR", "value-1")

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "key: ${DOCFUSE_TEST_VAR}", "key: value-1"},
		{"unset variable", "key: ${DOCFUSE_TEST_UNSET}", "key: "},
		{"default used", "key: ${DOCFUSE_TEST_UNSET:-fallback}", "key: fallback"},
		{"default ignored when set", "key: ${DOCFUSE_TEST_VAR:-fallback}", "key: value-1"},
		{"no variables", "key: plain", "key: plain"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("default env = %q, want local", got)
	}

	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("env = %q, want prod", got)
	}
}
