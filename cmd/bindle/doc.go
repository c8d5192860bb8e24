// SPDX-License-Identifier: MPL-2.0

// Command bindle is a small JavaScript module bundler.
//
// It walks the import graph of an entry module, rewrites ES module syntax to
// CommonJS, and emits one self-contained script with an embedded require
// loader. Subcommands cover bundling, graph inspection, executing a bundle
// in an embedded engine, and generating a starter config.
package main
