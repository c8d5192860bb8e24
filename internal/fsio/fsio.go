// SPDX-License-Identifier: MPL-2.0

// Package fsio is the bundler's filesystem boundary: reading module sources,
// writing the finished bundle, and resolving relative import specifiers to
// absolute file paths.
//
// Resolution is deliberately lexical. A specifier is joined against the
// importing module's directory and, when no file exists at the joined path,
// a small probe list is tried (extension suffixes, then a directory index).
// There is no package.json handling and no bare-specifier resolution.
package fsio

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultExtensions are the suffixes probed, in order, when a specifier does
// not name an existing file as written.
var DefaultExtensions = []string{".js", ".mjs"}

// indexFile is probed inside a directory specifier (e.g. "./lib" -> "./lib/index.js").
const indexFile = "index.js"

type (
	// ReadError reports a module source that could not be read.
	ReadError struct {
		Path string
		Err  error
	}

	// WriteError reports a bundle output that could not be written.
	WriteError struct {
		Path string
		Err  error
	}

	// Resolver maps (importer directory, relative specifier) pairs to absolute
	// file paths. It is a pure function of its inputs plus the probe list; the
	// stat hook exists so tests can substitute a fake filesystem.
	Resolver struct {
		extensions []string
		stat       func(string) (os.FileInfo, error)
	}
)

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("cannot read module %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *ReadError) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write bundle %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *WriteError) Unwrap() error { return e.Err }

// ReadFile reads a module source, wrapping any failure in a ReadError.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return data, nil
}

// WriteFile persists the finished bundle, wrapping any failure in a WriteError.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// NewResolver creates a Resolver with the given probe extensions.
// An empty list selects DefaultExtensions.
func NewResolver(extensions ...string) *Resolver {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Resolver{extensions: extensions, stat: os.Stat}
}

// Resolve joins spec against baseDir and returns an absolute path to the
// module file it names. When the joined path does not exist as written, the
// probe list is tried: each configured extension suffix, then the directory
// index file. If nothing matches, the lexically joined path is returned
// unchanged; the subsequent read reports the missing file as a ReadError.
func (r *Resolver) Resolve(baseDir, spec string) (string, error) {
	joined := filepath.Join(baseDir, spec)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("resolve %q against %s: %w", spec, baseDir, err)
	}

	if r.isFile(abs) {
		return abs, nil
	}
	for _, ext := range r.extensions {
		if candidate := abs + ext; r.isFile(candidate) {
			return candidate, nil
		}
	}
	if candidate := filepath.Join(abs, indexFile); r.isFile(candidate) {
		return candidate, nil
	}
	return abs, nil
}

func (r *Resolver) isFile(path string) bool {
	info, err := r.stat(path)
	return err == nil && info.Mode().IsRegular()
}
