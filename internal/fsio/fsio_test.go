// SPDX-License-Identifier: MPL-2.0

package fsio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.js"))
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected ReadError, got %T: %v", err, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadError should wrap os.ErrNotExist, got %v", err)
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "bundle.js")
	if err := WriteFile(out, []byte("require(0);")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := ReadFile(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "require(0);" {
		t.Errorf("round trip mismatch: %q", data)
	}
}

func TestWriteFile_BadDir(t *testing.T) {
	t.Parallel()

	err := WriteFile(filepath.Join(t.TempDir(), "missing", "bundle.js"), []byte("x"))
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected WriteError, got %T: %v", err, err)
	}
}

func TestResolver_Probing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "exact.js"), "1")
	mustWrite(t, filepath.Join(dir, "bare.js"), "1")
	mustWrite(t, filepath.Join(dir, "mod.mjs"), "1")
	mustWrite(t, filepath.Join(dir, "lib", "index.js"), "1")

	r := NewResolver()
	tests := []struct {
		name string
		spec string
		want string
	}{
		{name: "exact file", spec: "./exact.js", want: filepath.Join(dir, "exact.js")},
		{name: "extension probe", spec: "./bare", want: filepath.Join(dir, "bare.js")},
		{name: "mjs probe", spec: "./mod", want: filepath.Join(dir, "mod.mjs")},
		{name: "directory index", spec: "./lib", want: filepath.Join(dir, "lib", "index.js")},
		{name: "missing stays lexical", spec: "./ghost.js", want: filepath.Join(dir, "ghost.js")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := r.Resolve(dir, tt.spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.spec, got, tt.want)
			}
		})
	}
}

func TestResolver_ParentTraversal(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "shared.js"), "1")
	sub := filepath.Join(root, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := NewResolver().Resolve(sub, "../shared.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(root, "shared.js") {
		t.Errorf("Resolve(../shared.js) = %q", got)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
