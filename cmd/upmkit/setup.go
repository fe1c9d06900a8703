package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/upmkit/upmkit/internal/manifest"
	"github.com/upmkit/upmkit/internal/refresh"
	"github.com/upmkit/upmkit/internal/registry"
	"github.com/upmkit/upmkit/internal/setup"
	"github.com/upmkit/upmkit/internal/upm"
)

func setupCmd() *cobra.Command {
	var (
		skipPrompt   bool
		manifestPath string
		registryName string
		registryURL  string
		scope        string
		pkg          string
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Add the scoped registry and install the SDK package",
		Long: `Add the configured scoped registry to the project manifest and
install the SDK package.

The manifest is only written when the registry is missing; a project
that is already configured is left untouched. An SDK package that is
already installed counts as success.

Examples:
  upmkit setup
  upmkit setup --yes
  upmkit setup --registry-url=https://registry.example.com --scope=com.example`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(setupFlags{
				skipPrompt:   skipPrompt,
				manifestPath: manifestPath,
				registryName: registryName,
				registryURL:  registryURL,
				scope:        scope,
				pkg:          pkg,
				timeout:      timeout,
			})
		},
	}

	cmd.Flags().BoolVarP(&skipPrompt, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Override the manifest path")
	cmd.Flags().StringVar(&registryName, "registry-name", "", "Override the registry name")
	cmd.Flags().StringVar(&registryURL, "registry-url", "", "Override the registry URL")
	cmd.Flags().StringVar(&scope, "scope", "", "Override the registry scope")
	cmd.Flags().StringVar(&pkg, "package", "", "Override the SDK package identifier")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override the install timeout")

	return cmd
}

type setupFlags struct {
	skipPrompt   bool
	manifestPath string
	registryName string
	registryURL  string
	scope        string
	pkg          string
	timeout      time.Duration
}

func runSetup(flags setupFlags) error {
	printBanner()

	cfg := loadConfigOrDefaults()
	if flags.manifestPath != "" {
		cfg.Manifest = flags.manifestPath
	}
	if flags.registryName != "" {
		cfg.Registry.Name = flags.registryName
	}
	if flags.registryURL != "" {
		cfg.Registry.URL = flags.registryURL
	}
	if flags.scope != "" {
		cfg.Registry.Scopes = []string{flags.scope}
	}
	if flags.pkg != "" {
		cfg.Install.Package = flags.pkg
	}
	timeout := cfg.InstallTimeout()
	if flags.timeout > 0 {
		timeout = flags.timeout
	}

	fmt.Println()
	info("Registry: %s (%s)", cfg.Registry.Name, cfg.Registry.URL)
	info("Scopes:   %s", strings.Join(cfg.Registry.Scopes, ", "))
	info("Package:  %s", cfg.Install.Package)
	info("Manifest: %s", cfg.ManifestPath())
	fmt.Println()

	if !flags.skipPrompt {
		ok, err := confirm("Apply these changes?")
		if err != nil {
			return err
		}
		if !ok {
			info("Aborted.")
			return nil
		}
		fmt.Println()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	source, err := registry.NewSource(ctx, cfg.Registry.URL)
	if err != nil {
		return err
	}

	var notifier refresh.Notifier = refresh.Nop{}
	if cfg.Install.RefreshStamp != "" {
		notifier = refresh.Stamp{Path: cfg.Install.RefreshStamp}
	}

	res, err := setup.Run(ctx, setup.Options{
		ManifestPath: cfg.ManifestPath(),
		Registry: manifest.Registry{
			Name:   cfg.Registry.Name,
			URL:    cfg.Registry.URL,
			Scopes: cfg.Registry.Scopes,
		},
		Package:  cfg.Install.Package,
		Timeout:  timeout,
		Client:   upm.NewClient(registry.NewClient(source), cfg.CachePath()),
		Notifier: notifier,
	})
	if err != nil {
		return err
	}

	if res.AlreadyConfigured {
		info("Registry %q already configured.", cfg.Registry.Name)
	} else {
		success("Added registry %q to %s", cfg.Registry.Name, cfg.ManifestPath())
	}

	switch {
	case res.AlreadyInstalled && res.InstalledVersion != "":
		info("Package %s@%s already installed.", cfg.Install.Package, res.InstalledVersion)
	case res.AlreadyInstalled:
		info("Package %s already installed.", cfg.Install.Package)
	case res.InstalledVersion != "":
		success("Installed %s@%s", cfg.Install.Package, res.InstalledVersion)
	}

	fmt.Println()
	return nil
}

// confirm asks a yes/no question on stdin. Empty input means yes.
func confirm(question string) (bool, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("? %s [Y/n] ", question)

	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
