// SPDX-License-Identifier: MPL-2.0

// Package graph discovers the transitive dependency set of an entry module.
//
// Discovery is a FIFO worklist walk: the entry asset is built first (fixing
// its identity at 0), then each asset's raw import specifiers are resolved
// against its own directory and expanded in encountered order, so identities
// are dense breadth-first discovery numbers.
//
// By default the builder deduplicates by resolved absolute path: a specifier
// that resolves to an already-built module reuses its identity and only adds
// a mapping edge, which also makes import cycles terminate (the back edge is
// just a reused identity). Compat mode reproduces the original design this
// tool derives from, where every resolved import is read, transformed and
// numbered again even for an already-seen file; under that mode a genuine
// cycle grows the worklist forever, so a hard module ceiling converts runaway
// growth into a CycleError instead of a hang.
package graph

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"bindle/internal/asset"
	"bindle/internal/fsio"
)

// DefaultMaxModules is the worklist ceiling applied when Options.MaxModules
// is zero. Realistic graphs sit far below it; compat-mode cycles hit it fast.
const DefaultMaxModules = 1024

type (
	// Options configures one bundling run.
	Options struct {
		// Compat disables path deduplication, faithfully reproducing the
		// original non-memoizing discovery algorithm.
		Compat bool

		// MaxModules caps the number of assets the worklist may grow to.
		// Zero selects DefaultMaxModules.
		MaxModules int

		// Resolver maps (importer dir, specifier) to absolute paths.
		// Nil selects fsio.NewResolver().
		Resolver *fsio.Resolver

		// Logger receives discovery progress at debug level. Nil discards.
		Logger *log.Logger
	}

	// Graph is the ordered, closed set of assets reachable from the entry
	// module. Index equals identity in the default mode as well as in compat
	// mode; the entry asset is always element 0. Immutable once built.
	Graph struct {
		assets []*asset.Asset
	}

	// CycleError reports compat-mode worklist growth past the ceiling,
	// which almost always means a circular import chain.
	CycleError struct {
		Limit int
	}
)

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("module worklist exceeded %d entries: import cycle suspected (shared-module deduplication, the default mode, resolves cycles)", e.Limit)
}

// New assembles a Graph from pre-built assets; the first asset is the entry
// and must hold identity 0. Build is the normal constructor — New exists for
// tooling that already has assets in hand.
func New(assets ...*asset.Asset) *Graph {
	return &Graph{assets: assets}
}

// Assets returns the assets in discovery order.
func (g *Graph) Assets() []*asset.Asset { return g.assets }

// Entry returns the entry asset (identity 0).
func (g *Graph) Entry() *asset.Asset { return g.assets[0] }

// Len returns the number of assets in the graph.
func (g *Graph) Len() int { return len(g.assets) }

// Build constructs the dependency graph rooted at entryPath. Any failure
// (unreadable file, unparsable module, ceiling hit) aborts the whole run;
// there is no partial graph.
func Build(entryPath string, opts Options) (*Graph, error) {
	if opts.MaxModules <= 0 {
		opts.MaxModules = DefaultMaxModules
	}
	if opts.Resolver == nil {
		opts.Resolver = fsio.NewResolver()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	absEntry, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, fmt.Errorf("resolve entry path %s: %w", entryPath, err)
	}

	builder := asset.NewBuilder(asset.NewAllocator())
	entry, err := builder.Build(absEntry)
	if err != nil {
		return nil, err
	}
	logger.Debug("entry module", "id", entry.ID, "path", entry.Path)

	assets := []*asset.Asset{entry}
	byPath := map[string]int{absEntry: entry.ID}

	// The slice doubles as the FIFO worklist: everything past i is still
	// unexpanded, and expansion only ever appends.
	for i := 0; i < len(assets); i++ {
		importer := assets[i]
		dir := filepath.Dir(importer.Path)

		for _, spec := range importer.RawDeps {
			childPath, err := opts.Resolver.Resolve(dir, spec)
			if err != nil {
				return nil, err
			}

			if !opts.Compat {
				if id, ok := byPath[childPath]; ok {
					importer.Mapping[spec] = id
					logger.Debug("reusing module", "id", id, "path", childPath, "importer", importer.Path)
					continue
				}
			}

			if len(assets) >= opts.MaxModules {
				return nil, &CycleError{Limit: opts.MaxModules}
			}

			child, err := builder.Build(childPath)
			if err != nil {
				return nil, err
			}
			importer.Mapping[spec] = child.ID
			byPath[childPath] = child.ID
			assets = append(assets, child)
			logger.Debug("discovered module", "id", child.ID, "path", childPath, "importer", importer.Path)
		}
	}

	return &Graph{assets: assets}, nil
}
