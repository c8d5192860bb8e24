// SPDX-License-Identifier: MPL-2.0

package jsparse

import (
	"errors"
	"strings"
	"testing"

	"github.com/dop251/goja"
)

// evalModule executes a transformed module body under a stub require that
// serves the given exports objects, and returns the module's exports.
func evalModule(t *testing.T, code string, deps map[string]map[string]any) map[string]any {
	t.Helper()

	vm := goja.New()
	if err := vm.Set("require", func(name string) map[string]any {
		dep, ok := deps[name]
		if !ok {
			t.Fatalf("module required unexpected dependency %q", name)
		}
		return dep
	}); err != nil {
		t.Fatal(err)
	}

	exports := map[string]any{}
	if err := vm.Set("exports", exports); err != nil {
		t.Fatal(err)
	}
	if err := vm.Set("module", map[string]any{"exports": exports}); err != nil {
		t.Fatal(err)
	}

	if _, err := vm.RunString(code); err != nil {
		t.Fatalf("transformed module failed to run: %v\n--- code ---\n%s", err, code)
	}
	return exports
}

func TestTransform_DefaultImport(t *testing.T) {
	t.Parallel()

	code, err := Transform("mod.js", "import greet from './greet.js';\nexport const msg = greet + '!';\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exports := evalModule(t, code, map[string]map[string]any{
		"./greet.js": {"default": "hello"},
	})
	if exports["msg"] != "hello!" {
		t.Errorf("exports.msg = %v, want hello!", exports["msg"])
	}
}

func TestTransform_NamedAndRenamedImport(t *testing.T) {
	t.Parallel()

	code, err := Transform("mod.js", "import { a, b as c } from './vals.js';\nexport const sum = a + c;\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exports := evalModule(t, code, map[string]map[string]any{
		"./vals.js": {"a": int64(2), "b": int64(3)},
	})
	if exports["sum"] != int64(5) {
		t.Errorf("exports.sum = %v, want 5", exports["sum"])
	}
}

func TestTransform_NamespaceImport(t *testing.T) {
	t.Parallel()

	code, err := Transform("mod.js", "import * as vals from './vals.js';\nexport const got = vals.a;\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exports := evalModule(t, code, map[string]map[string]any{
		"./vals.js": {"a": "x"},
	})
	if exports["got"] != "x" {
		t.Errorf("exports.got = %v, want x", exports["got"])
	}
}

func TestTransform_DefaultPlusNamedSingleRequire(t *testing.T) {
	t.Parallel()

	src := "import main, { extra } from './both.js';\nexport const got = main + extra;\n"
	code, err := Transform("mod.js", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(code, "require(") != 1 {
		t.Errorf("combined import should require its module once, got:\n%s", code)
	}

	exports := evalModule(t, code, map[string]map[string]any{
		"./both.js": {"default": "m", "extra": "e"},
	})
	if exports["got"] != "me" {
		t.Errorf("exports.got = %v, want me", exports["got"])
	}
}

func TestTransform_SideEffectImport(t *testing.T) {
	t.Parallel()

	code, err := Transform("mod.js", "import './side.js';\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(code, `require("./side.js");`) {
		t.Errorf("side-effect import should become a bare require, got:\n%s", code)
	}
}

func TestTransform_ExportDefault(t *testing.T) {
	t.Parallel()

	code, err := Transform("mod.js", "export default function add(a, b) { return a + b; }\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vm := goja.New()
	exports := vm.NewObject()
	module := vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		t.Fatal(err)
	}
	if err := vm.Set("exports", exports); err != nil {
		t.Fatal(err)
	}
	if err := vm.Set("module", module); err != nil {
		t.Fatal(err)
	}
	if _, err := vm.RunString(code); err != nil {
		t.Fatalf("transformed module failed to run: %v\n%s", err, code)
	}

	fnVal := exports.Get("default")
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		t.Fatalf("exports.default is not a function: %v", fnVal)
	}
	res, err := fn(goja.Undefined(), vm.ToValue(2), vm.ToValue(3))
	if err != nil {
		t.Fatalf("calling default export: %v", err)
	}
	if res.ToInteger() != 5 {
		t.Errorf("default export add(2,3) = %v, want 5", res)
	}
}

func TestTransform_ExportDeclarations(t *testing.T) {
	t.Parallel()

	src := `export const one = 1, two = 2;
export let three = 3;
export function double(n) { return n * 2; }
const local = 4;
export { local as four };
`
	code, err := Transform("mod.js", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exports := evalModule(t, code, nil)
	if exports["one"] != int64(1) || exports["two"] != int64(2) || exports["three"] != int64(3) {
		t.Errorf("declaration exports wrong: %v", exports)
	}
	if exports["four"] != int64(4) {
		t.Errorf("export list rename wrong: %v", exports["four"])
	}
	if _, ok := exports["double"]; !ok {
		t.Errorf("exported function missing: %v", exports)
	}
}

func TestTransform_Reexports(t *testing.T) {
	t.Parallel()

	src := `export { a, b as c } from './vals.js';
export * from './star.js';
`
	code, err := Transform("mod.js", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exports := evalModule(t, code, map[string]map[string]any{
		"./vals.js": {"a": "A", "b": "B"},
		"./star.js": {"s1": "S1", "s2": "S2", "default": "hidden"},
	})
	if exports["a"] != "A" || exports["c"] != "B" {
		t.Errorf("named re-exports wrong: %v", exports)
	}
	if exports["s1"] != "S1" || exports["s2"] != "S2" {
		t.Errorf("star re-export wrong: %v", exports)
	}
	if _, ok := exports["default"]; ok {
		t.Errorf("star re-export must not forward default: %v", exports)
	}
}

func TestTransform_SyntaxErrorReported(t *testing.T) {
	t.Parallel()

	_, err := Transform("broken.js", "function oops( {\n")
	var transformErr *TransformError
	if !errors.As(err, &transformErr) {
		t.Fatalf("expected TransformError, got %T: %v", err, err)
	}
	if transformErr.Path != "broken.js" {
		t.Errorf("TransformError.Path = %q", transformErr.Path)
	}
	if transformErr.Detail == "" {
		t.Error("TransformError.Detail should carry the engine diagnostic")
	}
}

func TestTransform_PlainCommonJSUntouched(t *testing.T) {
	t.Parallel()

	src := "const x = 21;\nmodule.exports.default = x * 2;\n"
	code, err := Transform("plain.js", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != src {
		t.Errorf("module without ESM syntax should pass through unchanged:\n%s", code)
	}
}
