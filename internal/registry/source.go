package registry

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/upmkit/upmkit/internal/errors"
)

// Source fetches registry documents by path relative to the registry
// root, e.g. "com.example.pkg" for a packument or
// "com.example.pkg/-/com.example.pkg-1.0.0.tgz" for a tarball.
type Source interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// NewSource returns a Source for the given registry base URL.
//
// Supported schemes:
//   - http:// and https:// — npm-compatible registry over HTTP
//   - s3://bucket/prefix — registry documents stored in S3
//   - file:// — a local directory (what `upmkit serve` publishes)
func NewSource(ctx context.Context, base string) (Source, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.New("E301").WithPath(base).Wrap(err)
	}

	switch u.Scheme {
	case "http", "https":
		return &httpSource{
			base: strings.TrimSuffix(base, "/"),
			client: &http.Client{
				Timeout: 30 * time.Second,
			},
		}, nil
	case "s3":
		return newS3SourceFromURL(ctx, u)
	case "file":
		return &fileSource{root: u.Path}, nil
	default:
		return nil, errors.New("E301").
			WithPath(base).
			WithDetail("Unsupported registry scheme: " + u.Scheme)
	}
}

// httpSource fetches documents from an npm-compatible HTTP registry.
type httpSource struct {
	base   string
	client *http.Client
}

func (s *httpSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.base+"/"+path, nil)
	if err != nil {
		return nil, errors.New("E301").WithPath(s.base).Wrap(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.New("E301").
			WithPath(s.base).
			WithDetail("Could not connect to registry: " + err.Error()).
			WithSuggestion("Check your internet connection")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to read
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New("E302").WithPath(s.base + "/" + path)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.New("E305").WithPath(s.base + "/" + path)
	default:
		return nil, errors.New("E301").
			WithPath(s.base).
			WithDetail("Registry returned status " + resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New("E301").WithPath(s.base).Wrap(err)
	}
	return data, nil
}

// fileSource fetches documents from a local directory laid out the way
// the serve command publishes packages: each package owns a directory
// holding packument.json and its tarballs.
type fileSource struct {
	root string
}

func (s *fileSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	var full string
	if name, file, ok := strings.Cut(path, "/-/"); ok {
		full = filepath.Join(s.root, filepath.Base(name), filepath.Base(file))
	} else {
		full = filepath.Join(s.root, filepath.Base(path), "packument.json")
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E302").WithPath(full)
		}
		return nil, errors.New("E301").WithPath(full).Wrap(err)
	}
	return data, nil
}
