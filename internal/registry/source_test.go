package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/upmkit/upmkit/internal/errors"
)

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/com.example.pkg":
			w.Write([]byte(`{"name":"com.example.pkg"}`))
		case "/com.locked.pkg":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src, err := NewSource(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("NewSource error: %v", err)
	}

	data, err := src.Fetch(context.Background(), "com.example.pkg")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty response")
	}

	_, err = src.Fetch(context.Background(), "com.absent.pkg")
	if errors.CodeOf(err) != "E302" {
		t.Errorf("404 code = %q, want E302", errors.CodeOf(err))
	}

	_, err = src.Fetch(context.Background(), "com.locked.pkg")
	if errors.CodeOf(err) != "E305" {
		t.Errorf("403 code = %q, want E305", errors.CodeOf(err))
	}
}

func TestHTTPSource_Unreachable(t *testing.T) {
	// A server that is already closed refuses connections.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	src, _ := NewSource(context.Background(), url)
	_, err := src.Fetch(context.Background(), "com.example.pkg")
	if errors.CodeOf(err) != "E301" {
		t.Errorf("code = %q, want E301", errors.CodeOf(err))
	}
}

func TestFileSource_Fetch(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "com.example.pkg")
	os.MkdirAll(pkgDir, 0755)
	os.WriteFile(filepath.Join(pkgDir, "packument.json"), []byte(`{"name":"com.example.pkg"}`), 0644)
	os.WriteFile(filepath.Join(pkgDir, "pkg.tgz"), []byte("bytes"), 0644)

	src, err := NewSource(context.Background(), "file://"+root)
	if err != nil {
		t.Fatalf("NewSource error: %v", err)
	}

	data, err := src.Fetch(context.Background(), "com.example.pkg")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(data) != `{"name":"com.example.pkg"}` {
		t.Errorf("packument = %q", data)
	}

	data, err = src.Fetch(context.Background(), "com.example.pkg/-/pkg.tgz")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(data) != "bytes" {
		t.Errorf("data = %q", data)
	}

	_, err = src.Fetch(context.Background(), "com.absent.pkg")
	if errors.CodeOf(err) != "E302" {
		t.Errorf("code = %q, want E302", errors.CodeOf(err))
	}
}

func TestNewSource_UnsupportedScheme(t *testing.T) {
	_, err := NewSource(context.Background(), "ftp://registry.example")
	if err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
	if errors.CodeOf(err) != "E301" {
		t.Errorf("code = %q, want E301", errors.CodeOf(err))
	}
}
