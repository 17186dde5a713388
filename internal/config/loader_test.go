package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\ntopics: [orders, users]\nstrict_topics: true\nmax_subscribers: 5\nhistory_size: 8\nlog_level: debug\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || len(cfg.Topics) != 2 || !cfg.StrictTopics || cfg.MaxSubscribers != 5 || cfg.HistorySize != 8 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","topics":["a"],"max_subscribers":42,"max_body_bytes":2048}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || len(cfg.Topics) != 1 || cfg.MaxSubscribers != 42 || cfg.MaxBodyBytes != 2048 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\ntopics=[\"x\",\"y\"]\nhistory_size=3\ncors_enabled=true\ncors_allowed_origins=[\"*\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || len(cfg.Topics) != 2 || cfg.HistorySize != 3 || !cfg.CORSEnabled || len(cfg.CORSAllowedOrigins) != 1 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := Load(filepath.Join(d, "missing.yaml")); err == nil {
		t.Fatalf("expected error on missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	d := t.TempDir()
	for name, content := range map[string]string{
		"bad.yaml": "addr: [unclosed",
		"bad.json": `{"addr":`,
		"bad.toml": "addr = ",
	} {
		p := writeTempFile(t, d, name, content)
		if _, err := Load(p); err == nil {
			t.Fatalf("expected parse error for %s", name)
		}
	}
}
