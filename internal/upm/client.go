package upm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/upmkit/upmkit/internal/errors"
	"github.com/upmkit/upmkit/internal/registry"
)

// Client installs packages from a registry into a local cache.
//
// Installs are issued through RequestAdd, which returns immediately
// with an AddRequest handle; callers poll IsCompleted or block on Wait.
type Client struct {
	registry *registry.Client
	cacheDir string
}

// NewClient creates a package-manager client. Installed packages are
// staged under cacheDir as <name>@<version>/package.tgz.
func NewClient(reg *registry.Client, cacheDir string) *Client {
	return &Client{
		registry: reg,
		cacheDir: cacheDir,
	}
}

// CacheDir returns the directory installed packages are staged under.
func (c *Client) CacheDir() string {
	return c.cacheDir
}

// RequestAdd starts installing a package and returns a handle to the
// in-flight request. The identifier is a package name with an optional
// version: com.example.pkg or com.example.pkg@1.2.0.
func (c *Client) RequestAdd(ctx context.Context, identifier string) *AddRequest {
	req := &AddRequest{
		identifier: identifier,
		done:       make(chan struct{}),
	}

	go func() {
		defer close(req.done)
		req.version, req.err = c.add(ctx, identifier)
	}()

	return req
}

// add performs the install. It returns the resolved version string on
// success and a *StatusError classifying the failure otherwise.
func (c *Client) add(ctx context.Context, identifier string) (string, error) {
	name, version, err := splitIdentifier(identifier)
	if err != nil {
		return "", err
	}

	if installed, v := c.isInstalled(name); installed {
		return v, &StatusError{
			Status:  StatusConflict,
			Package: identifier,
			Message: fmt.Sprintf("%s@%s is already installed", name, v),
		}
	}

	resolved, err := c.registry.Resolve(ctx, name, version)
	if err != nil {
		return "", statusFromRegistryError(identifier, err)
	}

	data, err := c.registry.Download(ctx, resolved)
	if err != nil {
		return "", statusFromRegistryError(identifier, err)
	}

	dir := filepath.Join(c.cacheDir, name+"@"+resolved.Version)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &StatusError{Status: StatusUnknown, Package: identifier, Message: err.Error()}
	}
	if err := os.WriteFile(filepath.Join(dir, "package.tgz"), data, 0644); err != nil {
		return "", &StatusError{Status: StatusUnknown, Package: identifier, Message: err.Error()}
	}

	return resolved.Version, nil
}

// isInstalled reports whether any version of the package is already
// staged in the cache.
func (c *Client) isInstalled(name string) (bool, string) {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return false, ""
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if n, v, ok := strings.Cut(entry.Name(), "@"); ok && n == name {
			return true, v
		}
	}
	return false, ""
}

// Installed lists the packages currently staged in the cache.
func (c *Client) Installed() ([]string, error) {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() && strings.Contains(entry.Name(), "@") {
			out = append(out, entry.Name())
		}
	}
	return out, nil
}

// splitIdentifier separates a package identifier into name and version.
func splitIdentifier(identifier string) (name, version string, err error) {
	name, version, _ = strings.Cut(identifier, "@")
	if name == "" || strings.ContainsAny(name, " \t") || !strings.Contains(name, ".") {
		return "", "", &StatusError{
			Status:  StatusInvalidParameter,
			Package: identifier,
			Message: "invalid package identifier",
		}
	}
	return name, version, nil
}

// statusFromRegistryError maps registry error codes onto the closed
// status set an AddRequest exposes.
func statusFromRegistryError(identifier string, err error) error {
	status := StatusUnknown
	switch errors.CodeOf(err) {
	case "E302":
		status = StatusNotFound
	case "E305":
		status = StatusForbidden
	}
	return &StatusError{
		Status:  status,
		Package: identifier,
		Message: err.Error(),
		Wrapped: err,
	}
}
