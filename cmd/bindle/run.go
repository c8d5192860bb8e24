// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dop251/goja"
	"github.com/spf13/cobra"

	"bindle/internal/bundle"
	"bindle/internal/issue"
)

var (
	runCompat     bool
	runMaxModules int

	// runCmd bundles and executes in an embedded engine
	runCmd = &cobra.Command{
		Use:   "run <entry>",
		Short: "Bundle an entry module and execute it in-process",
		Long: `Bundle an entry module and immediately execute the result in an
embedded JavaScript engine. console.log/warn/error are wired to the
terminal. Nothing is written to disk.`,
		Args: cobra.ExactArgs(1),
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().BoolVar(&runCompat, "compat", false, "disable module sharing and the caching loader")
	runCmd.Flags().IntVar(&runMaxModules, "max-modules", 0, "ceiling on discovered modules (default from config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	entry := args[0]
	compat := runCompat || appCfg.Compat

	g, err := buildDependencyGraph(entry, compat, runMaxModules)
	if err != nil {
		return err
	}

	code := bundle.Emit(g, bundle.Options{Compat: compat})

	vm := goja.New()
	if err := installConsole(vm); err != nil {
		return fmt.Errorf("set up engine: %w", err)
	}

	if _, err := vm.RunString(code); err != nil {
		printIssueGuidance(issue.BundleEvalFailedId)
		return &ExitError{
			Code: 1,
			Err: issue.NewErrorContext().
				WithOperation("run bundle").
				WithResource(entry).
				Wrap(err).
				BuildError(),
		}
	}
	return nil
}

// installConsole wires a minimal console object into the engine. Arguments
// are stringified the way the engine itself would (String(v)).
func installConsole(vm *goja.Runtime) error {
	logTo := func(out *os.File) func(args ...goja.Value) {
		return func(args ...goja.Value) {
			parts := make([]string, len(args))
			for i, arg := range args {
				parts[i] = arg.String()
			}
			fmt.Fprintln(out, strings.Join(parts, " "))
		}
	}

	console := vm.NewObject()
	if err := console.Set("log", logTo(os.Stdout)); err != nil {
		return err
	}
	if err := console.Set("info", logTo(os.Stdout)); err != nil {
		return err
	}
	if err := console.Set("warn", logTo(os.Stderr)); err != nil {
		return err
	}
	if err := console.Set("error", logTo(os.Stderr)); err != nil {
		return err
	}
	return vm.Set("console", console)
}
