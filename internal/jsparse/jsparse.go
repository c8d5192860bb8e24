// SPDX-License-Identifier: MPL-2.0

// Package jsparse extracts import specifiers from ES module sources and
// rewrites module syntax into the CommonJS calling convention the bundle
// loader expects (a function body receiving require, module, exports).
//
// Scanning is regex-driven over a comment-masked copy of the source rather
// than a full parse: module declarations are statement-level syntax anchored
// at line starts, which keeps the scanner small and the statement spans exact.
// Transformed output is syntax-checked by compiling it with the embedded JS
// engine, so anything the scanner cannot see (a syntax error in ordinary
// code) still fails the build with a positioned diagnostic.
package jsparse

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type (
	// ParseError reports a module declaration the scanner could not make
	// sense of (e.g. an import statement missing its source string).
	ParseError struct {
		Path string
		Line int
		Col  int
		Msg  string
	}

	// TransformError reports source that survived scanning but did not
	// compile after module syntax was rewritten. Detail carries the engine's
	// position diagnostic.
	TransformError struct {
		Path   string
		Detail string
		Cause  error
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Msg)
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	return fmt.Sprintf("cannot transform %s: %s", e.Path, e.Detail)
}

// Unwrap returns the underlying compile error, if any.
func (e *TransformError) Unwrap() error { return e.Cause }

// Imports returns the module specifiers imported by src, in source order,
// exactly as written: not resolved against the importing file and not
// deduplicated. Side-effect imports and re-exports both count as imports.
func Imports(path, src string) ([]string, error) {
	stmts, err := scanModuleStmts(path, mask(src))
	if err != nil {
		return nil, err
	}
	var specs []string
	for _, s := range stmts {
		specs = append(specs, s.spec)
	}
	return specs, nil
}

type stmtKind int

const (
	stmtImportFrom stmtKind = iota // import <clause> from '<spec>'
	stmtImportBare                 // import '<spec>'
	stmtExportFrom                 // export {...} from '<spec>' / export * from '<spec>'
)

// moduleStmt is one scanned module declaration with its exact source span.
type moduleStmt struct {
	kind   stmtKind
	start  int
	end    int // past the closing quote and any trailing semicolon
	clause string
	spec   string
}

var (
	reImportFrom = regexp.MustCompile(`^[ \t]*import\s+([^'"]+?)\s*from\s*['"]([^'"]+)['"]`)
	reImportBare = regexp.MustCompile(`^[ \t]*import\s*['"]([^'"]+)['"]`)
	reExportFrom = regexp.MustCompile(`^[ \t]*export\s+(\*(?:\s+as\s+[A-Za-z_$][0-9A-Za-z_$]*)?|\{[^}]*\})\s*from\s*['"]([^'"]+)['"]`)

	reImportHead = regexp.MustCompile(`(?m)^[ \t]*import\b`)
	reExportHead = regexp.MustCompile(`(?m)^[ \t]*export\b[^\n]*[^\n_$0-9A-Za-z]from\b`)
)

// scanModuleStmts finds every import and re-export declaration in the masked
// source. A line that opens like a module declaration but matches none of the
// accepted statement forms is a ParseError.
func scanModuleStmts(path, masked string) ([]moduleStmt, error) {
	var stmts []moduleStmt

	for _, loc := range reImportHead.FindAllStringIndex(masked, -1) {
		rest := masked[loc[0]:]
		if isDynamicImport(rest) {
			continue
		}
		if m := reImportFrom.FindStringSubmatchIndex(rest); m != nil {
			stmts = append(stmts, moduleStmt{
				kind:   stmtImportFrom,
				start:  loc[0],
				end:    loc[0] + consumeSemi(rest, m[1]),
				clause: strings.TrimSpace(rest[m[2]:m[3]]),
				spec:   rest[m[4]:m[5]],
			})
			continue
		}
		if m := reImportBare.FindStringSubmatchIndex(rest); m != nil {
			stmts = append(stmts, moduleStmt{
				kind:  stmtImportBare,
				start: loc[0],
				end:   loc[0] + consumeSemi(rest, m[1]),
				spec:  rest[m[2]:m[3]],
			})
			continue
		}
		line, col := lineCol(masked, loc[0])
		return nil, &ParseError{Path: path, Line: line, Col: col, Msg: "malformed import declaration"}
	}

	for _, loc := range reExportHead.FindAllStringIndex(masked, -1) {
		rest := masked[loc[0]:]
		m := reExportFrom.FindStringSubmatchIndex(rest)
		if m == nil {
			line, col := lineCol(masked, loc[0])
			return nil, &ParseError{Path: path, Line: line, Col: col, Msg: "malformed re-export declaration"}
		}
		stmts = append(stmts, moduleStmt{
			kind:   stmtExportFrom,
			start:  loc[0],
			end:    loc[0] + consumeSemi(rest, m[1]),
			clause: strings.TrimSpace(rest[m[2]:m[3]]),
			spec:   rest[m[4]:m[5]],
		})
	}

	sort.Slice(stmts, func(i, j int) bool { return stmts[i].start < stmts[j].start })
	return stmts, nil
}

// isDynamicImport reports whether a scanned import head is a dynamic
// import(...) expression, which is left for the engine to judge.
func isDynamicImport(rest string) bool {
	trimmed := strings.TrimLeft(rest, " \t")
	trimmed = strings.TrimPrefix(trimmed, "import")
	trimmed = strings.TrimLeft(trimmed, " \t")
	return strings.HasPrefix(trimmed, "(")
}

// consumeSemi extends a statement span past one trailing semicolon.
func consumeSemi(s string, end int) int {
	i := end
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i < len(s) && s[i] == ';' {
		return i + 1
	}
	return end
}

// lineCol converts a byte offset to a 1-based line and column.
func lineCol(s string, off int) (line, col int) {
	line = 1
	col = 1
	for i := 0; i < off && i < len(s); i++ {
		if s[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// mask blanks out comments while leaving everything else (including string
// contents, so import specifiers survive) at its original offset. It tracks
// string state so comment markers inside literals are not treated as
// comments, and vice versa.
func mask(src string) string {
	b := []byte(src)
	n := len(b)
	for i := 0; i < n; {
		switch c := b[i]; {
		case c == '/' && i+1 < n && b[i+1] == '/':
			for i < n && b[i] != '\n' {
				b[i] = ' '
				i++
			}
		case c == '/' && i+1 < n && b[i+1] == '*':
			b[i], b[i+1] = ' ', ' '
			i += 2
			for i < n {
				if b[i] == '*' && i+1 < n && b[i+1] == '/' {
					b[i], b[i+1] = ' ', ' '
					i += 2
					break
				}
				if b[i] != '\n' {
					b[i] = ' '
				}
				i++
			}
		case c == '\'' || c == '"' || c == '`':
			quote := c
			i++
			for i < n {
				if b[i] == '\\' {
					i += 2
					continue
				}
				if b[i] == quote {
					i++
					break
				}
				i++
			}
		default:
			i++
		}
	}
	return string(b)
}
