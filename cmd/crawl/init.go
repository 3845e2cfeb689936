package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mackstann/crawler-exercise/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/crawl.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter configuration file",
		Long: `Init creates a new crawl.yaml configuration file in the current directory.

The generated file includes:
- Commented examples for site-specific settings
- Documentation for all available options

Examples:
  # Create crawl.yaml in the current directory
  crawl init

  # Create the configuration file at a specific path
  crawl init -o config/crawl.yaml

  # Overwrite an existing file
  crawl init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/crawl.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nEdit this file to set site-specific behavior such as:")
	fmt.Println("  - Authentication cookies and headers")
	fmt.Println("  - Per-site crawl depth")
	fmt.Println("  - URL patterns to ignore or follow")

	return nil
}
