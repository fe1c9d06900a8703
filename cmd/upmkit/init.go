package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/upmkit/upmkit/internal/config"
	"github.com/upmkit/upmkit/internal/errors"
)

// emptyManifest is what init writes when no manifest exists yet.
const emptyManifest = `{
  "dependencies": {}
}
`

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create upmkit.json in the current directory",
		Long: `Initialize an upmkit project in the current directory.

This writes upmkit.json with the default registry and install
settings, and creates an empty package manifest when none exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing upmkit.json")

	return cmd
}

func runInit(force bool) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	if !force && config.Exists(dir) {
		return errors.New("E142").
			WithPath(configPath).
			WithSuggestion("Use --force to overwrite it")
	}

	cfg := config.New()
	if err := cfg.SaveTo(configPath); err != nil {
		return err
	}
	success("Created %s", config.ConfigFileName)

	manifestPath := cfg.ManifestPath()
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(manifestPath), 0755); err != nil {
			return errors.New("E204").WithPath(manifestPath).Wrap(err)
		}
		if err := os.WriteFile(manifestPath, []byte(emptyManifest), 0644); err != nil {
			return errors.New("E204").WithPath(manifestPath).Wrap(err)
		}
		success("Created %s", cfg.Manifest)
	} else {
		info("Manifest %s already exists, leaving it alone.", cfg.Manifest)
	}

	fmt.Println()
	fmt.Println("  Ready! Set up the scoped registry with:")
	fmt.Println()
	fmt.Println("    upmkit setup")
	fmt.Println()

	return nil
}
