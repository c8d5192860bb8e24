// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bindle/internal/config"
)

var (
	initForce bool

	// initCmd creates a starter config file
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a starter bindle.cue in the current directory",
		Long: `Create a bindle.cue config file in the current directory, populated
with the built-in defaults so every knob is visible and documented by
example.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing bindle.cue")
}

func runInit(cmd *cobra.Command, args []string) error {
	filename := config.LocalFileName
	if len(args) > 0 {
		filename = args[0]
	}

	// Check if file exists
	if _, err := os.Stat(filename); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
	}

	content := config.GenerateCUE(config.DefaultConfig())

	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), PathStyle.Render(absPath))
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Adjust output, extensions or the module ceiling to taste")
	fmt.Println("  2. Run 'bindle build <entry>' to produce a bundle")
	return nil
}
