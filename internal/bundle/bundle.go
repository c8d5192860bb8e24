// SPDX-License-Identifier: MPL-2.0

// Package bundle serializes a completed dependency graph into a single
// self-contained script: a module table keyed by identity plus a loader that
// implements require(id) against it and kicks off the entry module.
//
// Each table entry pairs the module's body — wrapped in a function receiving
// its own require, module record and exports object — with its mapping from
// raw import specifier to dependency identity. Execution is lazy and
// demand-driven: a body runs the first time any ancestor requires it.
//
// The default loader caches exports per identity, so every body runs exactly
// once per run and cyclic requires observe the in-progress exports object.
// A body that throws evicts its cache slot, so no partial exports object is
// ever served to a later caller. The compat loader drops the cache and
// re-executes a body on every require, matching the design this tool
// derives from.
package bundle

import (
	"encoding/json"
	"fmt"
	"strings"

	"bindle/internal/graph"
)

// Options configures bundle emission.
type Options struct {
	// Compat selects the uncached loader.
	Compat bool
}

const loaderCached = `  var cache = {};

  function require(id) {
    if (cache[id]) {
      return cache[id].exports;
    }

    var fn = modules[id][0];
    var mapping = modules[id][1];

    var module = { exports: {} };
    cache[id] = module;

    function localRequire(name) {
      return require(mapping[name]);
    }

    try {
      fn(localRequire, module, module.exports);
    } catch (err) {
      delete cache[id];
      throw err;
    }

    return module.exports;
  }

  require(0);
`

const loaderCompat = `  function require(id) {
    var fn = modules[id][0];
    var mapping = modules[id][1];

    var module = { exports: {} };

    function localRequire(name) {
      return require(mapping[name]);
    }

    fn(localRequire, module, module.exports);

    return module.exports;
  }

  require(0);
`

// Emit serializes the graph. The output is one textual artifact with no
// external references; mappings are serialized with sorted keys so equal
// graphs produce byte-identical bundles.
func Emit(g *graph.Graph, opts Options) string {
	var b strings.Builder

	b.WriteString("(function(modules) {\n")
	if opts.Compat {
		b.WriteString(loaderCompat)
	} else {
		b.WriteString(loaderCached)
	}
	b.WriteString("})({\n")

	for _, a := range g.Assets() {
		mapping, err := json.Marshal(a.Mapping)
		if err != nil {
			// A map[string]int cannot fail to marshal.
			panic(fmt.Sprintf("bundle: marshal mapping for module %d: %v", a.ID, err))
		}
		fmt.Fprintf(&b, "%d: [function(require, module, exports) {\n%s\n}, %s],\n", a.ID, a.Code, mapping)
	}

	b.WriteString("});\n")
	return b.String()
}
