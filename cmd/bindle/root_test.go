// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dop251/goja"

	"bindle/internal/issue"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestClassifyBuildError(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		compat bool
		entry  string
		want   issue.Id
	}{
		{
			name:  "missing entry",
			files: map[string]string{},
			entry: "entry.js",
			want:  issue.EntryNotFoundId,
		},
		{
			name: "missing dependency",
			files: map[string]string{
				"entry.js": "import './gone.js';\n",
			},
			entry: "entry.js",
			want:  issue.ModuleReadFailedId,
		},
		{
			name: "malformed module syntax",
			files: map[string]string{
				"entry.js": "import { x } './x.js';\n",
			},
			entry: "entry.js",
			want:  issue.ModuleParseFailedId,
		},
		{
			name: "compat cycle",
			files: map[string]string{
				"entry.js": "import './a.js';\n",
				"a.js":     "import './entry.js';\n",
			},
			compat: true,
			entry:  "entry.js",
			want:   issue.CycleSuspectedId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeTree(t, tt.files)
			entry := filepath.Join(dir, tt.entry)

			_, err := buildDependencyGraph(entry, tt.compat, 16)
			if err == nil {
				t.Fatal("expected discovery to fail")
			}

			// buildDependencyGraph wraps the cause; classify the wrapped error.
			if got := classifyBuildError(err, entry); got != tt.want {
				t.Errorf("classifyBuildError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildDependencyGraph_Success(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"entry.js": "import './dep.js';\n",
		"dep.js":   "export const d = 1;\n",
	})

	g, err := buildDependencyGraph(filepath.Join(dir, "entry.js"), false, 0)
	if err != nil {
		t.Fatalf("buildDependencyGraph() error: %v", err)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestRunBuild_WritesBundle(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"entry.js": "import { x } from './dep.js';\n",
		"dep.js":   "export const x = 1;\n",
	})
	out := filepath.Join(dir, "out.js")

	buildOutput = out
	defer func() { buildOutput = "" }()

	if err := runBuild(buildCmd, []string{filepath.Join(dir, "entry.js")}); err != nil {
		t.Fatalf("runBuild() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("bundle not written: %v", err)
	}
	if !strings.Contains(string(data), "require(0)") {
		t.Error("bundle should kick off the entry module")
	}
}

func TestRunInit_RefusesOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := runInit(initCmd, nil); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := runInit(initCmd, nil); err == nil {
		t.Fatal("second init must refuse to overwrite")
	}

	initForce = true
	defer func() { initForce = false }()
	if err := runInit(initCmd, nil); err != nil {
		t.Errorf("init --force should overwrite: %v", err)
	}
}

func TestInstallConsole(t *testing.T) {
	vm := goja.New()
	if err := installConsole(vm); err != nil {
		t.Fatalf("installConsole() error: %v", err)
	}
	if _, err := vm.RunString(`console.log('a', 1); console.warn('w'); console.error('e'); console.info('i');`); err != nil {
		t.Errorf("console shim failed: %v", err)
	}
}

func TestDisplayPath(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "proj", "src")

	if got := displayPath(base, filepath.Join(base, "util.js")); got != "util.js" {
		t.Errorf("displayPath() = %q, want util.js", got)
	}

	other := filepath.Join(string(filepath.Separator), "x.js")
	if got := displayPath(base, other); got != other {
		t.Errorf("displayPath() = %q, want %q", got, other)
	}
}

func TestFormatErrorForDisplay(t *testing.T) {
	ae := issue.NewErrorContext().
		WithOperation("build dependency graph").
		WithSuggestion("Check the entry path").
		Wrap(os.ErrNotExist).
		BuildError()

	got := formatErrorForDisplay(ae, false)
	if !strings.Contains(got, "failed to build dependency graph") {
		t.Errorf("Format output = %q", got)
	}
	if !strings.Contains(got, "• Check the entry path") {
		t.Errorf("suggestions missing: %q", got)
	}

	plain := formatErrorForDisplay(os.ErrClosed, true)
	if plain != os.ErrClosed.Error() {
		t.Errorf("plain error should pass through, got %q", plain)
	}
}
