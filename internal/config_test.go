package internal

import (
	"strings"
	"testing"
)

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
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Library.Path == "" || cfg.Library.MediaPath == "" {
		t.Error("default library paths should be set")
	}
	if cfg.Render.Geometry.MaxFrets != 24 {
		t.Errorf("max frets = %d, want 24", cfg.Render.Geometry.MaxFrets)
	}
}

func TestLibraryConfig_RequiresPaths(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Library.MediaPath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty media path should fail validation")
	}
}

func TestRenderConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RenderConfig)
		errSub string
	}{
		{"zero fret spacing", func(c *RenderConfig) { c.Geometry.FretSpacing = 0 }, "geometry"},
		{"too many frets", func(c *RenderConfig) { c.Geometry.MaxFrets = 99 }, "geometry"},
		{"tiny font", func(c *RenderConfig) { c.Print.FontSize = 2 }, "print"},
		{"unknown page", func(c *RenderConfig) { c.Print.PageSize = "B7" }, "print"},
		{"negative lines", func(c *RenderConfig) { c.Print.LinesPerPage = -1 }, "print"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig().Render
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q should mention %q", err, tt.errSub)
			}
		})
	}
}
