package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/upmkit/upmkit/internal/serve"
)

func serveCmd() *cobra.Command {
	var (
		host string
		port int
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local scoped registry",
		Long: `Serve a directory of packages as an npm-compatible scoped registry.

Point a manifest at it with a file:// or http:// registry URL:

  upmkit registry add "Local" http://localhost:4873 com.example

The directory holds one subdirectory per package, each with a
packument.json and its tarballs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dir)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to serve packages from")

	return cmd
}

func runServe(host string, port int, dir string) error {
	printBanner()

	cfg := loadConfigOrDefaults()
	if host != "" {
		cfg.Serve.Host = host
	}
	if port != 0 {
		cfg.Serve.Port = port
	}
	if dir == "" {
		dir = cfg.ServeDirPath()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	srv, err := serve.NewServer(dir)
	if err != nil {
		return err
	}

	packages, err := srv.Store().Packages()
	if err != nil {
		return err
	}

	addr := cfg.ServeAddress()

	fmt.Println()
	info("Serving %d packages from %s", len(packages), dir)
	for _, name := range packages {
		fmt.Printf("    %s\n", name)
	}
	fmt.Println()
	info("Registry:  http://%s", addr)
	info("Health:    http://%s/healthz", addr)
	info("Metrics:   http://%s/metrics", addr)
	fmt.Println()
	info("Press Ctrl+C to stop.")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return srv.ListenAndServe(ctx, addr)
}
