package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/upmkit/upmkit/internal/errors"
	"github.com/upmkit/upmkit/internal/registry"
	"github.com/upmkit/upmkit/internal/upm"
)

func installCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "install <package>[@version]",
		Short: "Install a package from the configured registry",
		Long: `Install a package into the local cache.

The identifier is a reverse-domain package name with an optional
version. Without a version the registry's latest dist-tag is used.

Examples:
  upmkit install com.magicleap.unitysdk
  upmkit install com.magicleap.unitysdk@2.6.0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(args[0], timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override the install timeout")

	return cmd
}

func runInstall(identifier string, timeout time.Duration) error {
	cfg := loadConfigOrDefaults()
	if timeout <= 0 {
		timeout = cfg.InstallTimeout()
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
	client := upm.NewClient(registry.NewClient(source), cfg.CachePath())

	name, _, _ := strings.Cut(identifier, "@")
	if len(cfg.Registry.Scopes) > 0 && !registry.InScope(cfg.Registry.Scopes, name) {
		warn("%s is outside the registry scopes (%s); the registry may not serve it",
			name, strings.Join(cfg.Registry.Scopes, ", "))
	}

	info("Installing %s from %s...", identifier, cfg.Registry.URL)
	fmt.Println()

	req := client.RequestAdd(ctx, identifier)
	if err := req.Wait(timeout); err != nil {
		var se *upm.StatusError
		if stderrors.As(err, &se) {
			switch se.Status {
			case upm.StatusConflict:
				info("Package %s is already installed.", identifier)
				return nil
			case upm.StatusInvalidParameter:
				return errors.New("E140").WithDetail(se.Message).Wrap(err)
			}
		}
		return err
	}

	success("Installed %s@%s to %s", name, req.Version(), client.CacheDir())
	return nil
}
