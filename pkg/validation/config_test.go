package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("ServerConfig")
	cv.Required("ListenAddr", ":8080").Required("JWTSecret", "")

	if !cv.HasErrors() {
		t.Fatal("Expected validation errors")
	}
	if len(cv.Errors()) != 1 {
		t.Errorf("Got %d errors, want 1", len(cv.Errors()))
	}
	if err := cv.Validate(); err == nil || !strings.Contains(err.Error(), "JWTSecret") {
		t.Errorf("Validate() = %v, want JWTSecret error", err)
	}
}

func TestConfigValidator_Numeric(t *testing.T) {
	tests := []struct {
		name    string
		build   func(*ConfigValidator)
		wantErr bool
	}{
		{"Positive passes", func(cv *ConfigValidator) { cv.Positive("Port", 8080) }, false},
		{"Positive rejects zero", func(cv *ConfigValidator) { cv.Positive("Port", 0) }, true},
		{"NonNegative passes zero", func(cv *ConfigValidator) { cv.NonNegative("Retries", 0) }, false},
		{"NonNegative rejects negative", func(cv *ConfigValidator) { cv.NonNegative("Retries", -1) }, true},
		{"RangeInt inside", func(cv *ConfigValidator) { cv.RangeInt("Port", 8080, 1, 65535) }, false},
		{"RangeInt outside", func(cv *ConfigValidator) { cv.RangeInt("Port", 70000, 1, 65535) }, true},
		{"MinDuration passes", func(cv *ConfigValidator) { cv.MinDuration("Timeout", time.Minute, time.Second) }, false},
		{"MinDuration rejects", func(cv *ConfigValidator) { cv.MinDuration("Timeout", time.Millisecond, time.Second) }, true},
		{"MinLength rejects short", func(cv *ConfigValidator) { cv.MinLength("Secret", "abc", 32) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("TestConfig")
			tt.build(cv)
			if got := cv.HasErrors(); got != tt.wantErr {
				t.Errorf("HasErrors() = %v, want %v", got, tt.wantErr)
			}
		})
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	backends := []string{"memory", "file", "postgres", "s3"}

	cv := NewConfigValidator("StoreConfig")
	cv.OneOf("Backend", "postgres", backends)
	if cv.HasErrors() {
		t.Errorf("Unexpected errors: %v", cv.Errors())
	}

	cv = NewConfigValidator("StoreConfig")
	cv.OneOf("Backend", "cassandra", backends)
	if !cv.HasErrors() {
		t.Error("Expected error for unknown backend")
	}
}

func TestConfigValidator_When(t *testing.T) {
	// Validations inside When only run if the condition holds
	cv := NewConfigValidator("StoreConfig")
	cv.When(false, func(cv *ConfigValidator) {
		cv.Required("DSN", "")
	})
	if cv.HasErrors() {
		t.Errorf("Unexpected errors: %v", cv.Errors())
	}

	cv = NewConfigValidator("StoreConfig")
	cv.When(true, func(cv *ConfigValidator) {
		cv.Required("DSN", "")
	})
	if !cv.HasErrors() {
		t.Error("Expected error when condition is true")
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("bad value")

	cv := NewConfigValidator("TestConfig")
	cv.Custom("Field", func() error { return sentinel })

	if err := cv.Validate(); !errors.Is(err, sentinel) {
		t.Errorf("Validate() = %v, want wrapped sentinel", err)
	}
}

func TestConfigValidator_MultipleErrors(t *testing.T) {
	cv := NewConfigValidator("ServerConfig")
	cv.Required("ListenAddr", "").Positive("Port", -1).Required("JWTSecret", "")

	if len(cv.Errors()) != 3 {
		t.Errorf("Got %d errors, want 3", len(cv.Errors()))
	}
	if err := cv.Validate(); err == nil || !strings.Contains(err.Error(), "3 errors") {
		t.Errorf("Validate() = %v, want combined error mentioning 3 errors", err)
	}
}

func TestDefaults(t *testing.T) {
	if got := DefaultOr("", "memory"); got != "memory" {
		t.Errorf("DefaultOr empty = %s, want memory", got)
	}
	if got := DefaultOr("file", "memory"); got != "file" {
		t.Errorf("DefaultOr set = %s, want file", got)
	}
	if got := DefaultOrInt(0, 8080); got != 8080 {
		t.Errorf("DefaultOrInt zero = %d, want 8080", got)
	}
	if got := DefaultOrDuration(0, 30*time.Second); got != 30*time.Second {
		t.Errorf("DefaultOrDuration zero = %v, want 30s", got)
	}
}
