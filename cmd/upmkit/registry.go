package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/upmkit/upmkit/internal/manifest"
)

func registryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry [command]",
		Short: "Manage scoped registries in the project manifest",
		Long: `Manage the scoped registry entries of the project manifest.

Commands:
  add        Add a scoped registry entry
  list       List the manifest's scoped registries

Examples:
  upmkit registry add
  upmkit registry add "My Registry" https://registry.example.com com.example
  upmkit registry list`,
	}

	cmd.AddCommand(
		registryAddCmd(),
		registryListCmd(),
	)

	return cmd
}

func registryAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [name url scope...]",
		Short: "Add a scoped registry entry",
		Long: `Add a scoped registry entry to the project manifest.

Without arguments the configured default registry is added. An entry
with the same name is never added twice.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) < 3 {
				return fmt.Errorf("expected no arguments or: name url scope...")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryAdd(args)
		},
	}
}

func runRegistryAdd(args []string) error {
	cfg := loadConfigOrDefaults()

	entry := manifest.Registry{
		Name:   cfg.Registry.Name,
		URL:    cfg.Registry.URL,
		Scopes: cfg.Registry.Scopes,
	}
	if len(args) >= 3 {
		entry = manifest.Registry{
			Name:   args[0],
			URL:    args[1],
			Scopes: args[2:],
		}
	}

	doc, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		return err
	}

	if doc.ContainsRegistry(entry.Name) {
		warn("Registry %q already present in %s", entry.Name, cfg.ManifestPath())
		return nil
	}

	doc.AddRegistry(entry)
	if err := doc.Save(); err != nil {
		return err
	}

	success("Added registry %q to %s", entry.Name, cfg.ManifestPath())
	return nil
}

func registryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the manifest's scoped registries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryList()
		},
	}
}

func runRegistryList() error {
	cfg := loadConfigOrDefaults()

	doc, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		return err
	}

	if len(doc.Registries) == 0 {
		info("No scoped registries in %s", cfg.ManifestPath())
		return nil
	}

	fmt.Println()
	for _, reg := range doc.Registries {
		fmt.Printf("  %s\n", reg.Name)
		fmt.Printf("    url:    %s\n", reg.URL)
		fmt.Printf("    scopes: %s\n", strings.Join(reg.Scopes, ", "))
	}
	fmt.Println()

	return nil
}
