// Package setup wires the end-to-end flow: ensure the scoped registry
// is declared in the manifest, then install the SDK package through
// the package manager.
package setup

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/upmkit/upmkit/internal/errors"
	"github.com/upmkit/upmkit/internal/manifest"
	"github.com/upmkit/upmkit/internal/refresh"
	"github.com/upmkit/upmkit/internal/registry"
	"github.com/upmkit/upmkit/internal/upm"
)

// Options configures a setup run.
type Options struct {
	// ManifestPath is the package manifest to patch.
	ManifestPath string

	// Registry is the scoped registry entry to ensure.
	Registry manifest.Registry

	// Package is the identifier to install once the registry is in place.
	Package string

	// Timeout bounds the wait for the install request.
	Timeout time.Duration

	// Client performs the install. Required.
	Client *upm.Client

	// Notifier is told after a successful manifest write. Optional.
	Notifier refresh.Notifier
}

// Result reports what a setup run did.
type Result struct {
	// RegistryAdded is true when the manifest was patched.
	RegistryAdded bool

	// AlreadyConfigured is true when the registry was already present
	// and the manifest was left untouched.
	AlreadyConfigured bool

	// InstalledVersion is the version the install resolved to, when known.
	InstalledVersion string

	// AlreadyInstalled is true when the package manager reported a
	// conflict, i.e. the package was present before the run.
	AlreadyInstalled bool
}

// Run executes the flow: check, patch if needed, reverify, install.
// A registry that is already configured is a success, not an error.
func Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}

	doc, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}

	if doc.ContainsRegistry(opts.Registry.Name) {
		res.AlreadyConfigured = true
	} else {
		doc.AddRegistry(opts.Registry)
		if err := doc.Save(); err != nil {
			return nil, err
		}
		res.RegistryAdded = true

		if opts.Notifier != nil {
			opts.Notifier.Changed(opts.ManifestPath)
		}

		// Reverify: the entry must be readable back from disk.
		reloaded, err := manifest.Load(opts.ManifestPath)
		if err != nil {
			return nil, err
		}
		if !reloaded.ContainsRegistry(opts.Registry.Name) {
			return nil, errors.New("E204").
				WithPath(opts.ManifestPath).
				WithDetail("Registry entry did not survive the manifest write")
		}
	}

	if opts.Package == "" {
		return res, nil
	}

	// The registry only serves identifiers under its scopes; refuse
	// before issuing a request that can never resolve.
	name, _, _ := strings.Cut(opts.Package, "@")
	if len(opts.Registry.Scopes) > 0 && !registry.InScope(opts.Registry.Scopes, name) {
		return nil, errors.New("E312").
			WithDetail(name + " is not under the registry scopes " + strings.Join(opts.Registry.Scopes, ", "))
	}

	req := opts.Client.RequestAdd(ctx, opts.Package)
	if err := req.Wait(opts.Timeout); err != nil {
		var se *upm.StatusError
		if stderrors.As(err, &se) && se.Status == upm.StatusConflict {
			// Already installed: success. The request still carries
			// the version found in the cache.
			res.AlreadyInstalled = true
			res.InstalledVersion = req.Version()
			return res, nil
		}
		if errors.CodeOf(err) == "E311" {
			return nil, err
		}
		return nil, errors.New("E310").
			WithDetail(err.Error()).
			Wrap(err)
	}

	res.InstalledVersion = req.Version()
	return res, nil
}
