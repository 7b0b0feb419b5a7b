package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Practice.Mode != nil || cfg.Storage.Path != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := writeConfig(t, `
[practice]
mode = "words"
words = 25
punctuation = true
difficulty = "expert"
lazy-mode = false
funbox = ["capitals"]

[storage]
path = "/tmp/ledger.db"

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := cfg.Practice
	if p.Mode == nil || *p.Mode != "words" {
		t.Fatalf("mode = %v", p.Mode)
	}
	if p.Words == nil || *p.Words != 25 {
		t.Fatalf("words = %v", p.Words)
	}
	if p.Punctuation == nil || !*p.Punctuation {
		t.Fatalf("punctuation = %v", p.Punctuation)
	}
	if p.LazyMode == nil || *p.LazyMode {
		t.Fatalf("lazy-mode = %v", p.LazyMode)
	}
	if p.Time != nil {
		t.Fatalf("time should be unset")
	}
	if p.Funbox == nil || len(*p.Funbox) != 1 || (*p.Funbox)[0] != "capitals" {
		t.Fatalf("funbox = %v", p.Funbox)
	}
	if cfg.Storage.Path == nil || *cfg.Storage.Path != "/tmp/ledger.db" {
		t.Fatalf("storage.path = %v", cfg.Storage.Path)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("log.level = %v", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"mode":       "[practice]\nmode = \"marathon\"\n",
		"difficulty": "[practice]\ndifficulty = \"insane\"\n",
		"time":       "[practice]\ntime = 0\n",
		"unknown":    "[practice]\ncaps = 0.5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "typeledger", "config.toml") {
		t.Fatalf("config path = %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "typeledger", "typeledger.db") {
		t.Fatalf("db path = %s", got)
	}
	if got := DefaultLogPath(); !strings.HasPrefix(got, "/state") {
		t.Fatalf("log path = %s", got)
	}
	if got := DefaultWordListPath("german"); got != filepath.Join("/cfg", "typeledger", "wordlists", "german.txt") {
		t.Fatalf("wordlist path = %s", got)
	}
}
