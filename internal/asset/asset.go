// SPDX-License-Identifier: MPL-2.0

// Package asset turns one source file into the bundler's per-module build
// record: an identity, the transformed code, and the raw import specifiers
// still to be resolved by the graph builder.
package asset

import (
	"sync/atomic"

	"bindle/internal/fsio"
	"bindle/internal/jsparse"
)

type (
	// Asset is one discovered module.
	Asset struct {
		// ID is the module's identity: unique within a bundling run, assigned
		// at creation, never reused. The entry module always holds 0.
		ID int

		// Path is the absolute source path the module was read from.
		Path string

		// RawDeps are the import specifiers exactly as written in the source,
		// in order, duplicates included.
		RawDeps []string

		// Code is the transformed module body in the loader's CommonJS
		// calling convention.
		Code string

		// Mapping resolves each raw specifier to the identity of the module
		// it imports. It is empty until the graph builder fills it; after
		// graph construction it is read-only.
		Mapping map[string]int
	}

	// Allocator issues module identities for one bundling run: a fresh
	// strictly increasing integer per call, starting at 0. It is an explicit
	// per-run object rather than process state so concurrent or repeated runs
	// in one process cannot interfere. Atomic, in case asset builds are ever
	// parallelized.
	Allocator struct {
		next atomic.Int64
	}

	// Builder builds Assets. It reads the file, consults the parse/transform
	// layer, and allocates an identity; it never recurses into dependencies
	// and never writes anything.
	Builder struct {
		ids *Allocator
	}
)

// NewAllocator creates an Allocator whose first identity is 0.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns the next identity.
func (a *Allocator) Next() int {
	return int(a.next.Add(1) - 1)
}

// NewBuilder creates a Builder drawing identities from ids.
func NewBuilder(ids *Allocator) *Builder {
	return &Builder{ids: ids}
}

// Build creates the Asset for one source file. Failures are typed:
// fsio.ReadError for unreadable files, jsparse.ParseError or
// jsparse.TransformError for sources that cannot be scanned or rewritten.
// The identity is allocated only after the module parses, so a failed build
// never burns a number.
func (b *Builder) Build(path string) (*Asset, error) {
	data, err := fsio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src := string(data)

	deps, err := jsparse.Imports(path, src)
	if err != nil {
		return nil, err
	}
	code, err := jsparse.Transform(path, src)
	if err != nil {
		return nil, err
	}

	return &Asset{
		ID:      b.ids.Next(),
		Path:    path,
		RawDeps: deps,
		Code:    code,
		Mapping: make(map[string]int, len(deps)),
	}, nil
}
