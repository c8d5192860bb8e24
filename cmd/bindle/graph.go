// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

var (
	graphCompat     bool
	graphMaxModules int

	// graphCmd lists the modules discovery would bundle, without emitting
	graphCmd = &cobra.Command{
		Use:   "graph <entry>",
		Short: "List the modules reachable from an entry",
		Long: `Walk the import graph of an entry module and print each discovered
module with its identity and resolved dependencies, without writing a
bundle. Identities are breadth-first discovery numbers; the entry is
always 0.`,
		Args: cobra.ExactArgs(1),
		RunE: runGraph,
	}
)

func init() {
	graphCmd.Flags().BoolVar(&graphCompat, "compat", false, "disable module sharing during discovery")
	graphCmd.Flags().IntVar(&graphMaxModules, "max-modules", 0, "ceiling on discovered modules (default from config)")
}

func runGraph(cmd *cobra.Command, args []string) error {
	entry := args[0]
	compat := graphCompat || appCfg.Compat

	g, err := buildDependencyGraph(entry, compat, graphMaxModules)
	if err != nil {
		return err
	}

	// Paths are shown relative to the entry's directory when possible; the
	// absolute forms are long and mostly shared prefix.
	baseDir := filepath.Dir(g.Entry().Path)

	fmt.Println(TitleStyle.Render("Modules") + SubtitleStyle.Render(fmt.Sprintf(" (%d)", g.Len())))
	for _, a := range g.Assets() {
		fmt.Printf("  %s  %s\n", idStyle.Render(fmt.Sprintf("%3d", a.ID)), PathStyle.Render(displayPath(baseDir, a.Path)))

		specs := make([]string, 0, len(a.Mapping))
		for spec := range a.Mapping {
			specs = append(specs, spec)
		}
		sort.Strings(specs)
		for _, spec := range specs {
			fmt.Printf("       %s %s %s\n", SubtitleStyle.Render(spec), SubtitleStyle.Render("->"), VerboseStyle.Render(fmt.Sprintf("%d", a.Mapping[spec])))
		}
	}
	return nil
}

func displayPath(baseDir, path string) string {
	if rel, err := filepath.Rel(baseDir, path); err == nil && len(rel) < len(path) {
		return rel
	}
	return path
}
