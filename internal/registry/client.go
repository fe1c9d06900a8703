package registry

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/upmkit/upmkit/internal/errors"
)

// Packument is the npm-style package metadata document a registry
// serves for each package name.
type Packument struct {
	Name     string             `json:"name"`
	DistTags map[string]string  `json:"dist-tags"`
	Versions map[string]Version `json:"versions"`
}

// Version describes one published version of a package.
type Version struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Dist    Dist   `json:"dist"`
}

// Dist carries the tarball location and checksum for a version.
type Dist struct {
	Tarball string `json:"tarball"`
	Shasum  string `json:"shasum"`
}

// Client reads package metadata and tarballs through a Source.
type Client struct {
	source Source
}

// NewClient creates a registry client over the given source.
func NewClient(source Source) *Client {
	return &Client{source: source}
}

// Packument fetches and decodes the metadata document for a package.
func (c *Client) Packument(ctx context.Context, name string) (*Packument, error) {
	data, err := c.source.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	var doc Packument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.New("E303").WithPath(name).Wrap(err)
	}
	return &doc, nil
}

// Resolve picks the concrete version for a package. An empty or
// "latest" version resolves through the latest dist-tag.
func (c *Client) Resolve(ctx context.Context, name, version string) (*Version, error) {
	doc, err := c.Packument(ctx, name)
	if err != nil {
		return nil, err
	}

	if version == "" || version == "latest" {
		version = doc.DistTags["latest"]
		if version == "" {
			return nil, errors.New("E303").
				WithPath(name).
				WithDetail("Packument has no latest dist-tag")
		}
	}

	v, ok := doc.Versions[version]
	if !ok {
		return nil, errors.New("E302").
			WithPath(name).
			WithDetail("Version " + version + " is not published")
	}
	if v.Name == "" {
		v.Name = name
	}
	if v.Version == "" {
		v.Version = version
	}
	return &v, nil
}

// Download fetches the tarball for a resolved version and verifies its
// shasum when the registry advertised one.
func (c *Client) Download(ctx context.Context, v *Version) ([]byte, error) {
	data, err := c.source.Fetch(ctx, tarballPath(v))
	if err != nil {
		return nil, err
	}

	if v.Dist.Shasum != "" {
		sum := sha1.Sum(data)
		if hex.EncodeToString(sum[:]) != v.Dist.Shasum {
			return nil, errors.New("E304").
				WithPath(tarballPath(v)).
				WithDetail("Expected shasum " + v.Dist.Shasum)
		}
	}
	return data, nil
}

// tarballPath derives the source-relative tarball path for a version.
// Registries advertise absolute tarball URLs; only the trailing
// <name>/-/<file> segment is meaningful to a Source.
func tarballPath(v *Version) string {
	file := v.Name + "-" + v.Version + ".tgz"
	if v.Dist.Tarball != "" {
		if u, err := url.Parse(v.Dist.Tarball); err == nil {
			if base := path.Base(u.Path); base != "." && base != "/" {
				file = base
			}
		}
	}
	return v.Name + "/-/" + file
}

// InScope reports whether a package identifier falls under any of the
// given scope prefixes. A scope matches the identifier itself or any
// dotted extension of it.
func InScope(scopes []string, identifier string) bool {
	for _, scope := range scopes {
		if identifier == scope || strings.HasPrefix(identifier, scope+".") {
			return true
		}
	}
	return false
}
