// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"bindle/internal/config"
	"bindle/internal/fsio"
	"bindle/internal/graph"
	"bindle/internal/issue"
	"bindle/internal/jsparse"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug-level discovery logs
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// appCfg is the merged configuration, loaded once per invocation.
	appCfg = config.DefaultConfig()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "bindle",
		Short: "A tiny JavaScript module bundler",
		Long: TitleStyle.Render("bindle") + SubtitleStyle.Render(" - A tiny JavaScript module bundler") + `

bindle walks the static import graph of an entry module, rewrites ES
module syntax to CommonJS, and emits one self-contained script with an
embedded require loader. The result runs anywhere a script tag does.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Point bindle at your entry module
  2. Ship the emitted bundle

` + SubtitleStyle.Render("Examples:") + `
  bindle build src/index.js          Bundle to ./bundle.js
  bindle build src/index.js -o app.js
  bindle graph src/index.js          List the discovered modules
  bindle run src/index.js            Bundle and execute in-process
  bindle init                        Create a starter bindle.cue`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bindle.cue, then $HOME/.config/bindle/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	cfg, _, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		// Always surface config loading errors to the user
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return
	}

	appCfg = cfg

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}
}

// newLogger builds the discovery logger; debug level only when verbose.
func newLogger() *log.Logger {
	if !verbose {
		return log.New(io.Discard)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "bindle",
	})
	logger.SetLevel(log.DebugLevel)
	return logger
}

// graphOptions derives discovery options from the merged config plus the
// per-command flag overrides.
func graphOptions(compat bool, maxModules int) graph.Options {
	if maxModules <= 0 {
		maxModules = appCfg.MaxModules
	}
	return graph.Options{
		Compat:     compat,
		MaxModules: maxModules,
		Resolver:   fsio.NewResolver(appCfg.Resolve.Extensions...),
		Logger:     newLogger(),
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// classifyBuildError maps a discovery failure onto the issue registry so the
// CLI can surface remediation guidance next to the raw error.
func classifyBuildError(err error, entryPath string) issue.Id {
	var readErr *fsio.ReadError
	if errors.As(err, &readErr) {
		// Discovery works on absolute paths; compare the entry the same way.
		if abs, absErr := filepath.Abs(entryPath); absErr == nil && readErr.Path == abs {
			return issue.EntryNotFoundId
		}
		return issue.ModuleReadFailedId
	}

	var parseErr *jsparse.ParseError
	if errors.As(err, &parseErr) {
		return issue.ModuleParseFailedId
	}

	var transformErr *jsparse.TransformError
	if errors.As(err, &transformErr) {
		return issue.ModuleTransformFailedId
	}

	var cycleErr *graph.CycleError
	if errors.As(err, &cycleErr) {
		return issue.CycleSuspectedId
	}

	return 0
}

// printIssueGuidance renders the registry guidance for a known failure mode
// to stderr. Rendering failures are swallowed; guidance is best-effort.
func printIssueGuidance(id issue.Id) {
	if !verbose || id == 0 {
		return
	}
	known := issue.Get(id)
	if known == nil {
		return
	}
	if rendered, err := known.Render("dark"); err == nil {
		fmt.Fprintln(os.Stderr, rendered)
	}
}
