package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ppcrecomp.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, `
in = "default.xex"
out = "recompiled"
target = "recomp.cpp"

[options]
non_argument_as_local = true
ctr_as_local = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.In != "default.xex" || cfg.Out != "recompiled" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.Options.NonArgumentAsLocal {
		t.Errorf("expected non_argument_as_local=true")
	}
	profile := cfg.Profile()
	if !profile.NonArgumentAsLocal {
		t.Errorf("Profile() did not carry non_argument_as_local through")
	}
}

func TestLoadRejectsUnknownOptionKey(t *testing.T) {
	path := writeTemp(t, `
in = "default.xex"
out = "recompiled"

[options]
totally_not_a_real_flag = true
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a ConfigError for an unrecognised option key")
	}
}

func TestLoadRequiresInAndOut(t *testing.T) {
	path := writeTemp(t, `target = "recomp.cpp"`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a ConfigError for a missing \"in\"/\"out\"")
	}
}
