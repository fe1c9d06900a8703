package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/upmkit/upmkit/internal/config"
	"github.com/upmkit/upmkit/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┌┬┐╦╔═┬┌┬┐
  ║ ║├─┘│││╠╩╗│ │
  ╚═╝┴  ┴ ┴╩ ╩┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "upmkit",
		Short: "Manage UPM project manifests and scoped registries",
		Long: `upmkit manages Unity Package Manager project manifests.

It patches Packages/manifest.json without disturbing the rest of the
file, talks to npm-compatible scoped registries, and installs packages
into a local cache. Features include:

  • Scoped registry setup with a single command
  • Package installs from http(s), s3, and file registries
  • The dependencies block preserved byte for byte
  • A local registry server for development`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		setupCmd(),
		registryCmd(),
		installCmd(),
		initCmd(),
		serveCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the upmkit ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// loadConfigOrDefaults loads the nearest upmkit.json, falling back to
// built-in defaults when the working directory is not a project.
func loadConfigOrDefaults() *config.Config {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return config.New()
	}
	return cfg
}
