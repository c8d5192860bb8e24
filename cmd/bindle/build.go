// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bindle/internal/bundle"
	"bindle/internal/fsio"
	"bindle/internal/graph"
	"bindle/internal/issue"
	"bindle/internal/watch"
)

var (
	buildOutput     string
	buildCompat     bool
	buildMaxModules int
	buildWatch      bool

	// buildCmd bundles an entry module into one script
	buildCmd = &cobra.Command{
		Use:   "build <entry>",
		Short: "Bundle an entry module into a single script",
		Long: `Bundle an entry module and everything it transitively imports into a
single self-contained script.

By default modules imported from several places are shared: each file is
read, transformed and numbered once, and every import of it resolves to
the same instance. --compat switches to the historical behavior where
every import gets its own fresh copy and the loader re-executes module
bodies on every require.`,
		Args: cobra.ExactArgs(1),
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output path (default from config, ./bundle.js)")
	buildCmd.Flags().BoolVar(&buildCompat, "compat", false, "disable module sharing and the caching loader")
	buildCmd.Flags().IntVar(&buildMaxModules, "max-modules", 0, "ceiling on discovered modules (default from config)")
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "rebuild when source files change")
}

func runBuild(cmd *cobra.Command, args []string) error {
	entry := args[0]
	compat := buildCompat || appCfg.Compat

	output := buildOutput
	if output == "" {
		output = appCfg.Output
	}

	if err := bundleOnce(entry, output, compat); err != nil {
		if !buildWatch {
			return err
		}
		// In watch mode a broken initial state is reported, not fatal; the
		// next save gets another chance.
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	}

	if !buildWatch {
		return nil
	}
	return watchAndRebuild(cmd.Context(), entry, output, compat)
}

// bundleOnce runs one full discovery-and-emit pass.
func bundleOnce(entry, output string, compat bool) error {
	g, err := buildDependencyGraph(entry, compat, buildMaxModules)
	if err != nil {
		return err
	}

	code := bundle.Emit(g, bundle.Options{Compat: compat})
	if err := fsio.WriteFile(output, []byte(code)); err != nil {
		printIssueGuidance(issue.BundleWriteFailedId)
		return issue.NewErrorContext().
			WithOperation("write bundle").
			WithResource(output).
			WithSuggestion("Check that the output directory exists and is writable").
			WithSuggestion("Pass -o to choose another path").
			Wrap(err).
			BuildError()
	}

	absOutput, _ := filepath.Abs(output)
	fmt.Printf("%s Bundled %s module(s) into %s\n",
		SuccessStyle.Render("✓"), idStyle.Render(fmt.Sprintf("%d", g.Len())), PathStyle.Render(absOutput))
	return nil
}

// watchAndRebuild blocks rebundling the entry whenever a source file under
// its directory changes. The emitted bundle is ignored so writing it does
// not retrigger the watcher.
func watchAndRebuild(ctx context.Context, entry, output string, compat bool) error {
	baseDir := filepath.Dir(entry)

	ignore := []string{}
	if rel, err := filepath.Rel(baseDir, output); err == nil && !strings.HasPrefix(rel, "..") {
		ignore = append(ignore, filepath.ToSlash(rel))
	}

	w, err := watch.New(watch.Config{
		BaseDir:  baseDir,
		Patterns: watch.SourcePatterns(appCfg.Resolve.Extensions),
		Ignore:   ignore,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Println(SubtitleStyle.Render(fmt.Sprintf("changed: %s", strings.Join(changed, ", "))))
			if err := bundleOnce(entry, output, compat); err != nil {
				fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	fmt.Println(WarningStyle.Render("watching ") + PathStyle.Render(baseDir) + SubtitleStyle.Render(" (Ctrl-C to stop)"))
	return w.Run(ctx)
}

// buildDependencyGraph runs discovery and wraps failures with actionable
// context plus registry guidance.
func buildDependencyGraph(entry string, compat bool, maxModules int) (*graph.Graph, error) {
	g, err := graph.Build(entry, graphOptions(compat, maxModules))
	if err == nil {
		return g, nil
	}

	id := classifyBuildError(err, entry)
	printIssueGuidance(id)

	ctx := issue.NewErrorContext().
		WithOperation("build dependency graph").
		WithResource(entry).
		Wrap(err)

	switch id {
	case issue.EntryNotFoundId:
		ctx.WithSuggestion("Check the entry path for typos")
	case issue.ModuleReadFailedId:
		ctx.WithSuggestion("Import specifiers are resolved relative to the importing file")
	case issue.ModuleParseFailedId, issue.ModuleTransformFailedId:
		ctx.WithSuggestion("The diagnostic names the file and position of the problem")
	case issue.CycleSuspectedId:
		ctx.WithSuggestion("Drop --compat so shared modules are deduplicated").
			WithSuggestion("Raise --max-modules if the project genuinely is that large")
	}

	return nil, ctx.BuildError()
}
