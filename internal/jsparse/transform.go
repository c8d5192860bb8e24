// SPDX-License-Identifier: MPL-2.0

package jsparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja"
)

// tempPrefix names the hoisted require results synthesized for imports that
// bind more than one group (default + named, default + namespace). One require
// per import statement keeps module bodies single-execution-safe even under
// the uncached compat loader.
const tempPrefix = "__bindle_mod"

var (
	reExportDefault = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\b`)
	reExportDecl    = regexp.MustCompile(`(?m)^([ \t]*)export(\s+)(const|let|var|async[ \t]+function\*?|function\*?|class)([ \t\*]+)([A-Za-z_$][0-9A-Za-z_$]*)`)
	reExportList    = regexp.MustCompile(`(?m)^[ \t]*export\s*\{([^}]*)\}`)
)

// edit is a pending span replacement against the original source.
type edit struct {
	start, end int
	text       string
}

// Transform rewrites the ES module syntax in src into the loader's CommonJS
// calling convention and returns the new module body. The output references
// only the three injected bindings (require, module, exports) for its module
// plumbing. The rewritten body is compiled with goja before being returned;
// a compile failure is reported as a TransformError with the engine's
// position diagnostic.
func Transform(path, src string) (string, error) {
	masked := mask(src)
	stmts, err := scanModuleStmts(path, masked)
	if err != nil {
		return "", err
	}

	var edits []edit
	covered := make(map[int]bool, len(stmts))
	temp := 0

	for _, s := range stmts {
		covered[s.start] = true
		var text string
		switch s.kind {
		case stmtImportBare:
			text = fmt.Sprintf("require(%q);", s.spec)
		case stmtImportFrom:
			text, err = rewriteImport(path, masked, s, &temp)
		case stmtExportFrom:
			text, err = rewriteReexport(path, masked, s, &temp)
		}
		if err != nil {
			return "", err
		}
		edits = append(edits, edit{start: s.start, end: s.end, text: text})
	}

	var exported []string
	for _, m := range reExportDefault.FindAllStringSubmatchIndex(masked, -1) {
		if covered[m[0]] {
			continue
		}
		edits = append(edits, edit{start: m[0], end: m[1], text: masked[m[2]:m[3]] + "module.exports.default ="})
	}
	for _, m := range reExportDecl.FindAllStringSubmatchIndex(masked, -1) {
		if covered[m[0]] {
			continue
		}
		// Drop the export keyword, keep the declaration, remember the names.
		edits = append(edits, edit{start: m[3], end: m[6], text: ""})
		exported = append(exported, declaredNames(masked, m)...)
	}
	for _, m := range reExportList.FindAllStringSubmatchIndex(masked, -1) {
		if covered[m[0]] {
			continue
		}
		text, err := rewriteExportList(path, masked, m)
		if err != nil {
			return "", err
		}
		end := m[0] + consumeSemi(masked[m[0]:], m[1]-m[0])
		edits = append(edits, edit{start: m[0], end: end, text: text})
	}

	out := applyEdits(src, edits)
	if len(exported) > 0 {
		var footer strings.Builder
		footer.WriteString("\n")
		for _, name := range exported {
			fmt.Fprintf(&footer, "exports.%s = %s;\n", name, name)
		}
		out += footer.String()
	}

	if _, err := goja.Compile(path, out, false); err != nil {
		return "", &TransformError{Path: path, Detail: err.Error(), Cause: err}
	}
	return out, nil
}

// rewriteImport converts one import-from statement into require form.
func rewriteImport(path, masked string, s moduleStmt, temp *int) (string, error) {
	clause := strings.TrimSpace(s.clause)
	fail := func() (string, error) {
		line, col := lineCol(masked, s.start)
		return "", &ParseError{Path: path, Line: line, Col: col, Msg: fmt.Sprintf("unsupported import clause %q", clause)}
	}

	switch {
	case strings.HasPrefix(clause, "{"):
		bindings, ok := namedBindings(clause)
		if !ok {
			return fail()
		}
		return fmt.Sprintf("const %s = require(%q);", bindings, s.spec), nil

	case strings.HasPrefix(clause, "*"):
		ns, ok := namespaceBinding(clause)
		if !ok {
			return fail()
		}
		return fmt.Sprintf("const %s = require(%q);", ns, s.spec), nil

	default:
		name, rest, found := strings.Cut(clause, ",")
		name = strings.TrimSpace(name)
		if !isIdent(name) {
			return fail()
		}
		if !found {
			return fmt.Sprintf("const %s = require(%q).default;", name, s.spec), nil
		}
		rest = strings.TrimSpace(rest)
		mod := fmt.Sprintf("%s%d", tempPrefix, *temp)
		*temp++
		switch {
		case strings.HasPrefix(rest, "{"):
			bindings, ok := namedBindings(rest)
			if !ok {
				return fail()
			}
			return fmt.Sprintf("const %s = require(%q); const %s = %s.default; const %s = %s;",
				mod, s.spec, name, mod, bindings, mod), nil
		case strings.HasPrefix(rest, "*"):
			ns, ok := namespaceBinding(rest)
			if !ok {
				return fail()
			}
			return fmt.Sprintf("const %s = require(%q); const %s = %s.default; const %s = %s;",
				mod, s.spec, name, mod, ns, mod), nil
		default:
			return fail()
		}
	}
}

// rewriteReexport converts one export-from statement into require form.
func rewriteReexport(path, masked string, s moduleStmt, temp *int) (string, error) {
	clause := strings.TrimSpace(s.clause)

	if clause == "*" {
		mod := fmt.Sprintf("%s%d", tempPrefix, *temp)
		*temp++
		return fmt.Sprintf(
			"const %s = require(%q); Object.keys(%s).forEach(function (k) { if (k !== \"default\") { exports[k] = %s[k]; } });",
			mod, s.spec, mod, mod), nil
	}

	if strings.HasPrefix(clause, "*") {
		// export * as ns from 'spec'
		fields := strings.Fields(clause)
		if len(fields) != 3 || fields[1] != "as" || !isIdent(fields[2]) {
			line, col := lineCol(masked, s.start)
			return "", &ParseError{Path: path, Line: line, Col: col, Msg: fmt.Sprintf("unsupported re-export clause %q", clause)}
		}
		return fmt.Sprintf("exports.%s = require(%q);", fields[2], s.spec), nil
	}

	// export { a, b as c } from 'spec'
	mod := fmt.Sprintf("%s%d", tempPrefix, *temp)
	*temp++
	var b strings.Builder
	fmt.Fprintf(&b, "const %s = require(%q);", mod, s.spec)
	inner := strings.TrimSuffix(strings.TrimPrefix(clause, "{"), "}")
	for _, item := range strings.Split(inner, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		orig, local := splitAs(item)
		fmt.Fprintf(&b, " exports.%s = %s.%s;", local, mod, orig)
	}
	return b.String(), nil
}

// rewriteExportList converts a local export list (no source module) into
// exports assignments: export { a, b as c } => exports.a = a; exports.c = b;
func rewriteExportList(path, masked string, m []int) (string, error) {
	inner := masked[m[2]:m[3]]
	var b strings.Builder
	for _, item := range strings.Split(inner, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		orig, local := splitAs(item)
		if !isIdent(orig) || !isIdent(local) && local != "default" {
			line, col := lineCol(masked, m[0])
			return "", &ParseError{Path: path, Line: line, Col: col, Msg: fmt.Sprintf("unsupported export binding %q", item)}
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "exports.%s = %s;", local, orig)
	}
	return b.String(), nil
}

// namedBindings converts an import binding list into a destructuring pattern:
// "{ a, b as c }" => "{ a, b: c }".
func namedBindings(clause string) (string, bool) {
	if !strings.HasPrefix(clause, "{") || !strings.HasSuffix(clause, "}") {
		return "", false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(clause, "{"), "}")
	var parts []string
	for _, item := range strings.Split(inner, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		orig, local := splitAs(item)
		if !isIdent(local) {
			return "", false
		}
		if orig == local {
			parts = append(parts, orig)
		} else {
			parts = append(parts, orig+": "+local)
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }", true
}

// namespaceBinding extracts ns from "* as ns".
func namespaceBinding(clause string) (string, bool) {
	fields := strings.Fields(clause)
	if len(fields) == 3 && fields[0] == "*" && fields[1] == "as" && isIdent(fields[2]) {
		return fields[2], true
	}
	return "", false
}

// splitAs splits "orig as local" binding items; items without "as" bind under
// their own name.
func splitAs(item string) (orig, local string) {
	fields := strings.Fields(item)
	if len(fields) == 3 && fields[1] == "as" {
		return fields[0], fields[2]
	}
	return item, item
}

// declaredNames extracts the names bound by an exported declaration. For
// function and class declarations this is the single declared name; for
// const/let/var it is every top-level declarator on the declaration's first
// line (destructuring declarators are not supported as exports).
func declaredNames(masked string, m []int) []string {
	keyword := masked[m[6]:m[7]]
	first := masked[m[10]:m[11]]
	if !strings.HasPrefix(keyword, "const") && !strings.HasPrefix(keyword, "let") && !strings.HasPrefix(keyword, "var") {
		return []string{first}
	}

	names := []string{first}
	// Scan the remainder of the line for further top-level declarators.
	rest := masked[m[11]:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	depth := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ';':
			if depth == 0 {
				return names
			}
		case ',':
			if depth == 0 {
				if name := leadingIdent(rest[i+1:]); name != "" {
					names = append(names, name)
				}
			}
		}
	}
	return names
}

// leadingIdent returns the identifier at the start of s, after whitespace.
func leadingIdent(s string) string {
	s = strings.TrimLeft(s, " \t")
	end := 0
	for end < len(s) && isIdentByte(s[end], end == 0) {
		end++
	}
	if end == 0 {
		return ""
	}
	return s[:end]
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i], i == 0) {
			return false
		}
	}
	return true
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '$':
		return true
	case c >= '0' && c <= '9':
		return !first
	default:
		return false
	}
}

// applyEdits replaces each edit span in src, left to right. Spans never
// overlap because every edit is anchored at a distinct statement start.
func applyEdits(src string, edits []edit) string {
	sortEdits(edits)
	var b strings.Builder
	b.Grow(len(src))
	pos := 0
	for _, e := range edits {
		if e.start < pos {
			continue
		}
		b.WriteString(src[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.WriteString(src[pos:])
	return b.String()
}

func sortEdits(edits []edit) {
	for i := 1; i < len(edits); i++ {
		for j := i; j > 0 && edits[j].start < edits[j-1].start; j-- {
			edits[j], edits[j-1] = edits[j-1], edits[j]
		}
	}
}
