package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Debug bool   `yaml:"debug"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_KeepsDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	p := writeConfig(t, "name: ${SAMPLE_NAME}\n")

	cfg := sample{Port: 8080}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	p := writeConfig(t, "port: 0\n")
	cfg := sample{Port: 1}
	err := Load(p, &cfg)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	p := writeConfig(t, "port: [unterminated\n")
	cfg := sample{Port: 1}
	if err := Load(p, &cfg); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadOptional_MissingFileUsesDefaults(t *testing.T) {
	cfg := sample{Name: "default", Port: 9000}
	loaded, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &cfg)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if loaded {
		t.Error("loaded = true for a missing file")
	}
	if cfg.Name != "default" || cfg.Port != 9000 {
		t.Errorf("defaults changed: %+v", cfg)
	}
}

func TestLoadOptional_MissingFileStillValidates(t *testing.T) {
	cfg := sample{}
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err == nil {
		t.Error("invalid defaults should fail validation")
	}
}

func TestLoadOptional_ExistingFile(t *testing.T) {
	p := writeConfig(t, "debug: true\n")
	cfg := sample{Port: 1}
	loaded, err := LoadOptional(p, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded || !cfg.Debug {
		t.Errorf("loaded = %v, cfg = %+v", loaded, cfg)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	p := writeConfig(t, "port: 1\nprot: 2\n")
	cfg := sample{}
	if err := Load(p, &cfg); err == nil || !strings.Contains(err.Error(), "prot") {
		t.Errorf("err = %v, want unknown field error", err)
	}
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	p := writeConfig(t, "")
	cfg := sample{Port: 7}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestExpand(t *testing.T) {
	t.Setenv("EXPAND_SET", "value")
	t.Setenv("EXPAND_EMPTY", "")

	tests := []struct {
		in, want string
	}{
		{"$EXPAND_SET", "value"},
		{"${EXPAND_SET:-other}", "value"},
		{"${EXPAND_EMPTY:-fallback}", "fallback"},
		{"${EXPAND_UNSET_FOR_TEST:-./tools}", "./tools"},
		{"${EXPAND_UNSET_FOR_TEST}", ""},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Expand(tt.in); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
