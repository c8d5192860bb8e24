// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, path, err := Load(LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty (defaults)", path)
	}

	want := DefaultConfig()
	if cfg.Output != want.Output || cfg.Compat != want.Compat || cfg.MaxModules != want.MaxModules {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, want)
	}
	if len(cfg.Resolve.Extensions) != 2 || cfg.Resolve.Extensions[0] != ".js" {
		t.Errorf("Extensions = %v", cfg.Resolve.Extensions)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeConfig(t, t.TempDir(), "custom.cue", `
output: "dist/app.js"
compat: true
`)

	cfg, resolved, err := Load(LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Output != "dist/app.js" || !cfg.Compat {
		t.Errorf("cfg = %+v", cfg)
	}
	// Untouched fields keep their defaults
	if cfg.MaxModules != 1024 {
		t.Errorf("MaxModules = %d, want default 1024", cfg.MaxModules)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := Load(LoadOptions{ConfigFilePath: "/nonexistent/bindle.cue"})
	if err == nil {
		t.Fatal("explicit missing config file must be an error")
	}
	if !strings.Contains(err.Error(), "failed to load configuration") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_LocalFileWinsOverConfigDir(t *testing.T) {
	workDir := t.TempDir()
	t.Chdir(workDir)

	cfgDir := t.TempDir()
	writeConfig(t, cfgDir, "config.cue", `output: "global.js"`)
	writeConfig(t, workDir, LocalFileName, `output: "local.js"`)

	cfg, resolved, err := Load(LoadOptions{ConfigDirPath: cfgDir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if resolved != LocalFileName {
		t.Errorf("resolved path = %q, want %q", resolved, LocalFileName)
	}
	if cfg.Output != "local.js" {
		t.Errorf("Output = %q, want local.js", cfg.Output)
	}
}

func TestLoad_ConfigDirFallback(t *testing.T) {
	t.Chdir(t.TempDir())

	cfgDir := t.TempDir()
	writeConfig(t, cfgDir, "config.cue", `max_modules: 32`)

	cfg, resolved, err := Load(LoadOptions{ConfigDirPath: cfgDir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if resolved == "" {
		t.Error("resolved path should name the config dir file")
	}
	if cfg.MaxModules != 32 {
		t.Errorf("MaxModules = %d, want 32", cfg.MaxModules)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeConfig(t, t.TempDir(), "bad.cue", `compat: "yes"`)

	_, _, err := Load(LoadOptions{ConfigFilePath: path})
	if err == nil {
		t.Fatal("type mismatch must fail validation")
	}
	if !strings.Contains(err.Error(), "compat") {
		t.Errorf("error should name the offending field: %v", err)
	}
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeConfig(t, t.TempDir(), "bad.cue", `mangle: true`)

	if _, _, err := Load(LoadOptions{ConfigFilePath: path}); err == nil {
		t.Fatal("fields outside the schema must be rejected")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults pass", func(*Config) {}, ""},
		{"empty output", func(c *Config) { c.Output = "" }, "output"},
		{"zero ceiling", func(c *Config) { c.MaxModules = 0 }, "max_modules"},
		{"extension without dot", func(c *Config) { c.Resolve.Extensions = []string{"js"} }, "extensions[0]"},
		{"bare dot extension", func(c *Config) { c.Resolve.Extensions = []string{"."} }, "extensions[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateCUE_RoundTrips(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeConfig(t, t.TempDir(), "gen.cue", GenerateCUE(DefaultConfig()))

	cfg, _, err := Load(LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("generated config must load: %v", err)
	}

	want := DefaultConfig()
	if cfg.Output != want.Output || cfg.MaxModules != want.MaxModules || cfg.Compat != want.Compat {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}
