package validation

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/voicescribe/errors"
)

func TestValidatorRequired(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"present", "123:abc", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New().Required("telegram.token", tc.value)
			if v.HasErrors() != tc.wantErr {
				t.Errorf("HasErrors() = %v, want %v", v.HasErrors(), tc.wantErr)
			}
		})
	}
}

func TestValidatorFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}

	if v := New().FileExists("creds", file); v.HasErrors() {
		t.Errorf("expected no error for existing file, got %v", v.Errors())
	}
	if v := New().FileExists("creds", filepath.Join(dir, "missing.json")); !v.HasErrors() {
		t.Error("expected error for missing file")
	}
	if v := New().FileExists("creds", dir); !v.HasErrors() {
		t.Error("expected error for directory")
	}
	if v := New().FileExists("creds", ""); v.HasErrors() {
		t.Error("empty path should be left to Required")
	}
}

func TestValidatorRangeAndMin(t *testing.T) {
	v := New().Range("audio.sample_rate", 16000, 8000, 48000).Min("bot.workers", 1, 1)
	if v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}
	v = New().Range("audio.sample_rate", 4000, 8000, 48000).Min("bot.workers", 0, 1)
	if len(v.Errors()) != 2 {
		t.Errorf("expected 2 errors, got %v", v.Errors())
	}
}

func TestValidatorOneOf(t *testing.T) {
	if New().OneOf("env", "production", []string{"development", "production"}).HasErrors() {
		t.Error("expected no error for allowed value")
	}
	if !New().OneOf("env", "qa", []string{"development", "production"}).HasErrors() {
		t.Error("expected error for disallowed value")
	}
	if New().OneOf("env", "", []string{"development"}).HasErrors() {
		t.Error("expected empty value to be skipped")
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New().Custom(false, "field", "custom error")
	if !v.HasErrors() || v.Errors()[0].Message != "custom error" {
		t.Errorf("unexpected errors %v", v.Errors())
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Required("name", "x").Validate() != nil {
		t.Error("expected nil for valid input")
	}

	appErr := New().Required("telegram.token", "").Required("google.application_credentials", "").Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "telegram.token") || !strings.Contains(appErr.Message, "google.application_credentials") {
		t.Errorf("expected both fields in message, got %q", appErr.Message)
	}
}

type speechSection struct {
	Language   string `mapstructure:"language" validate:"required"`
	SampleRate int    `mapstructure:"sample_rate" validate:"gte=8000"`
}

type rootConfig struct {
	Speech speechSection `mapstructure:"speech"`
	Mode   string        `mapstructure:"mode" validate:"omitempty,oneof=polling webhook"`
}

func TestStructValidateReportsConfigKeys(t *testing.T) {
	err := Validate(rootConfig{Speech: speechSection{SampleRate: 100}, Mode: "push"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"speech.language: is required", "speech.sample_rate: must be 8000 or more", "mode: must be one of"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestStructValidateValid(t *testing.T) {
	if err := Validate(rootConfig{Speech: speechSection{Language: "sr-RS", SampleRate: 16000}}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	inner := Validate(rootConfig{Speech: speechSection{SampleRate: 16000}})
	v := New().Merge("google", inner).Merge("db", stderrors.New("boom")).Merge("none", nil)
	errs := v.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if errs[0].Field != "google.speech.language" {
		t.Errorf("expected prefixed field, got %q", errs[0].Field)
	}
	if errs[1].Field != "db" || errs[1].Message != "boom" {
		t.Errorf("unexpected plain error entry %+v", errs[1])
	}
}

func TestRequiredFunc(t *testing.T) {
	if err := Required("name", "value"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Required("name", ""); err == nil {
		t.Error("expected error for empty required field")
	}
}
