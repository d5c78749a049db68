package internal

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Shell.SeparatorWidth != 80 {
		t.Errorf("separator width = %d, want 80", cfg.Shell.SeparatorWidth)
	}
	if cfg.Tree.MetadataExt != ".txt" {
		t.Errorf("metadata ext = %q", cfg.Tree.MetadataExt)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestTreeConfig_RequiresRootAndProjects(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Tree.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty root should fail validation")
	}

	cfg = NewDefaultConfig()
	cfg.Tree.Projects = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty projects dir should fail validation")
	}
}

func TestTreeConfig_NormalisesMetadataExt(t *testing.T) {
	cfg := TreeConfig{Root: "r", Projects: "p", MetadataExt: "meta"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.MetadataExt != ".meta" {
		t.Errorf("metadata ext = %q, want .meta", cfg.MetadataExt)
	}
}

func TestShellConfig_Mode(t *testing.T) {
	cfg := ShellConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ShellModeLine {
		t.Errorf("empty mode = %q, want line", cfg.Mode)
	}
	cfg.Mode = "menu"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown shell mode should fail validation")
	}
}

func TestApplicationConfig_LogFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log format should fail validation")
	}
}

func TestCatalogConfig_PathRequiredWhenEnabled(t *testing.T) {
	cfg := CatalogConfig{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Error("enabled catalog without path should fail")
	}
	cfg = CatalogConfig{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled catalog without path should pass: %v", err)
	}
}

func TestWatchConfig_NegativeDebounce(t *testing.T) {
	cfg := WatchConfig{Debounce: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("negative debounce should fail")
	}
}
