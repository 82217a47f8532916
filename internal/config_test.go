package internal

import (
	"strings"
	"testing"
	"time"
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
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestQuizConfig_MatchPolicy(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Quiz.MatchPolicy = "exact"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("exact policy should pass: %v", err)
	}
	if cfg.Quiz.Policy() != "exact" {
		t.Errorf("policy = %q", cfg.Quiz.Policy())
	}

	cfg.Quiz.MatchPolicy = "roughly"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown match policy should fail validation")
	}
}

func TestSessionsConfig_SweepRequiredWithIdleTimeout(t *testing.T) {
	cfg := SessionsConfig{Max: 10, IdleTimeout: time.Minute}
	if err := cfg.Validate(); err == nil {
		t.Fatal("idle timeout without sweep interval should fail")
	}

	cfg.IdleTimeout = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("no expiry needs no sweep interval: %v", err)
	}

	cfg.Max = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative max should fail")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := HTTPConfig{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("port above 65535 should fail")
	}
	cfg.Port = 9090
	if got := cfg.Address(); got != ":9090" {
		t.Errorf("address = %q", got)
	}
}
