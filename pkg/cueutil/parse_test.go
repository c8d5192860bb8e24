// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Config: {
	output: string | *"bundle.js"
	compat: bool | *false
	max_modules: int & >0 | *1024
	resolve: {
		extensions: [...string] | *[".js", ".mjs"]
	}
}
`

type testConfig struct {
	Output     string `json:"output"`
	Compat     bool   `json:"compat"`
	MaxModules int    `json:"max_modules"`
	Resolve    struct {
		Extensions []string `json:"extensions"`
	} `json:"resolve"`
}

func TestParseAndDecode_Defaults(t *testing.T) {
	result, err := ParseAndDecode[testConfig]([]byte(testSchema), []byte("{}"), "#Config")
	if err != nil {
		t.Fatalf("ParseAndDecode() error: %v", err)
	}

	cfg := result.Value
	if cfg.Output != "bundle.js" {
		t.Errorf("Output = %q, want bundle.js", cfg.Output)
	}
	if cfg.Compat {
		t.Error("Compat should default to false")
	}
	if cfg.MaxModules != 1024 {
		t.Errorf("MaxModules = %d, want 1024", cfg.MaxModules)
	}
	if len(cfg.Resolve.Extensions) != 2 {
		t.Errorf("Extensions = %v", cfg.Resolve.Extensions)
	}
}

func TestParseAndDecode_UserOverrides(t *testing.T) {
	data := []byte(`
output: "dist/app.js"
compat: true
max_modules: 64
`)
	result, err := ParseAndDecode[testConfig]([]byte(testSchema), data, "#Config")
	if err != nil {
		t.Fatalf("ParseAndDecode() error: %v", err)
	}

	cfg := result.Value
	if cfg.Output != "dist/app.js" || !cfg.Compat || cfg.MaxModules != 64 {
		t.Errorf("decoded config = %+v", cfg)
	}
}

func TestParseAndDecode_TypeMismatch(t *testing.T) {
	data := []byte(`compat: "yes"`)
	_, err := ParseAndDecode[testConfig]([]byte(testSchema), data, "#Config", WithFilename("bindle.cue"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "bindle.cue") {
		t.Errorf("error should carry the filename: %v", err)
	}
	if !strings.Contains(err.Error(), "compat") {
		t.Errorf("error should carry the field path: %v", err)
	}
}

func TestParseAndDecode_ConstraintViolation(t *testing.T) {
	data := []byte(`max_modules: 0`)
	_, err := ParseAndDecode[testConfig]([]byte(testSchema), data, "#Config")
	if err == nil {
		t.Fatal("max_modules must be positive")
	}
}

func TestParseAndDecode_SyntaxError(t *testing.T) {
	data := []byte(`output: "unterminated`)
	_, err := ParseAndDecode[testConfig]([]byte(testSchema), data, "#Config", WithFilename("broken.cue"))
	if err == nil {
		t.Fatal("expected compile error")
	}
	if !strings.Contains(err.Error(), "broken.cue") {
		t.Errorf("error should carry the filename: %v", err)
	}
}

func TestParseAndDecode_UnknownSchemaPath(t *testing.T) {
	_, err := ParseAndDecode[testConfig]([]byte(testSchema), []byte("{}"), "#Nope")
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Errorf("missing schema definition should be an internal error, got %v", err)
	}
}

func TestParseAndDecode_FileSizeLimit(t *testing.T) {
	big := []byte("output: \"" + strings.Repeat("x", 64) + "\"")
	_, err := ParseAndDecode[testConfig]([]byte(testSchema), big, "#Config", WithMaxFileSize(16))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("expected size limit error, got %v", err)
	}
}

func TestParseAndDecodeString(t *testing.T) {
	result, err := ParseAndDecodeString[testConfig](testSchema, []byte("{}"), "#Config")
	if err != nil {
		t.Fatalf("ParseAndDecodeString() error: %v", err)
	}
	if result.Value.Output != "bundle.js" {
		t.Errorf("Output = %q", result.Value.Output)
	}
}
