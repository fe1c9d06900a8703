package upm

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/upmkit/upmkit/internal/errors"
	"github.com/upmkit/upmkit/internal/registry"
)

// slowSource delays every fetch, for timeout tests.
type slowSource struct {
	delay time.Duration
	inner registry.Source
}

func (s *slowSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.inner.Fetch(ctx, path)
}

type mapSource map[string][]byte

func (m mapSource) Fetch(_ context.Context, path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, errors.New("E302").WithPath(path)
	}
	return data, nil
}

func testSource(name, version string, tarball []byte) mapSource {
	sum := sha1.Sum(tarball)
	packument := fmt.Sprintf(`{
  "name": %q,
  "dist-tags": {"latest": %q},
  "versions": {%q: {"name": %q, "version": %q, "dist": {"shasum": %q}}}
}`, name, version, version, name, version, hex.EncodeToString(sum[:]))

	return mapSource{
		name: []byte(packument),
		name + "/-/" + name + "-" + version + ".tgz": tarball,
	}
}

func newTestClient(t *testing.T, src registry.Source) (*Client, string) {
	t.Helper()
	cache := filepath.Join(t.TempDir(), "packages")
	return NewClient(registry.NewClient(src), cache), cache
}

func TestRequestAdd_Success(t *testing.T) {
	src := testSource("com.magicleap.unitysdk", "2.0.0", []byte("sdk-bytes"))
	client, cache := newTestClient(t, src)

	req := client.RequestAdd(context.Background(), "com.magicleap.unitysdk")
	if err := req.Wait(5 * time.Second); err != nil {
		t.Fatalf("Wait error: %v", err)
	}

	if !req.IsCompleted() {
		t.Error("request should be completed")
	}
	if req.Version() != "2.0.0" {
		t.Errorf("Version = %q", req.Version())
	}

	staged := filepath.Join(cache, "com.magicleap.unitysdk@2.0.0", "package.tgz")
	data, err := os.ReadFile(staged)
	if err != nil {
		t.Fatalf("staged tarball missing: %v", err)
	}
	if string(data) != "sdk-bytes" {
		t.Error("staged tarball content changed")
	}
}

func TestRequestAdd_ExplicitVersion(t *testing.T) {
	src := testSource("com.example.pkg", "1.5.0", []byte("bytes"))
	client, _ := newTestClient(t, src)

	req := client.RequestAdd(context.Background(), "com.example.pkg@1.5.0")
	if err := req.Wait(5 * time.Second); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if req.Version() != "1.5.0" {
		t.Errorf("Version = %q", req.Version())
	}
}

func TestRequestAdd_Conflict(t *testing.T) {
	src := testSource("com.example.pkg", "1.0.0", []byte("bytes"))
	client, cache := newTestClient(t, src)

	// Pre-stage an install.
	os.MkdirAll(filepath.Join(cache, "com.example.pkg@1.0.0"), 0755)

	req := client.RequestAdd(context.Background(), "com.example.pkg")
	err := req.Wait(5 * time.Second)
	if err == nil {
		t.Fatal("expected conflict error")
	}

	var se *StatusError
	if !stderrors.As(err, &se) {
		t.Fatalf("error type = %T", err)
	}
	if se.Status != StatusConflict {
		t.Errorf("Status = %v, want conflict", se.Status)
	}
}

func TestRequestAdd_NotFound(t *testing.T) {
	client, _ := newTestClient(t, mapSource{})

	req := client.RequestAdd(context.Background(), "com.absent.pkg")
	err := req.Wait(5 * time.Second)

	var se *StatusError
	if !stderrors.As(err, &se) {
		t.Fatalf("error type = %T", err)
	}
	if se.Status != StatusNotFound {
		t.Errorf("Status = %v, want not-found", se.Status)
	}
}

func TestRequestAdd_Forbidden(t *testing.T) {
	client, _ := newTestClient(t, forbiddenSource{})

	req := client.RequestAdd(context.Background(), "com.locked.pkg")
	err := req.Wait(5 * time.Second)

	var se *StatusError
	if !stderrors.As(err, &se) {
		t.Fatalf("error type = %T", err)
	}
	if se.Status != StatusForbidden {
		t.Errorf("Status = %v, want forbidden", se.Status)
	}
}

type forbiddenSource struct{}

func (forbiddenSource) Fetch(_ context.Context, path string) ([]byte, error) {
	return nil, errors.New("E305").WithPath(path)
}

func TestRequestAdd_InvalidIdentifier(t *testing.T) {
	client, _ := newTestClient(t, mapSource{})

	tests := []string{"", "@1.0.0", "no spaces allowed", "nodots"}
	for _, id := range tests {
		req := client.RequestAdd(context.Background(), id)
		err := req.Wait(5 * time.Second)

		var se *StatusError
		if !stderrors.As(err, &se) {
			t.Fatalf("%q: error type = %T", id, err)
		}
		if se.Status != StatusInvalidParameter {
			t.Errorf("%q: Status = %v, want invalid-parameter", id, se.Status)
		}
	}
}

func TestWait_Timeout(t *testing.T) {
	slow := &slowSource{
		delay: 2 * time.Second,
		inner: testSource("com.example.pkg", "1.0.0", []byte("bytes")),
	}
	client, _ := newTestClient(t, slow)

	req := client.RequestAdd(context.Background(), "com.example.pkg")
	err := req.Wait(50 * time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout")
	}
	if errors.CodeOf(err) != "E311" {
		t.Errorf("code = %q, want E311", errors.CodeOf(err))
	}
	if req.IsCompleted() {
		t.Error("request should still be running after a timed-out wait")
	}
}

func TestAddRequest_BeforeCompletion(t *testing.T) {
	slow := &slowSource{
		delay: 2 * time.Second,
		inner: testSource("com.example.pkg", "1.0.0", []byte("bytes")),
	}
	client, _ := newTestClient(t, slow)

	req := client.RequestAdd(context.Background(), "com.example.pkg")
	if req.IsCompleted() {
		t.Error("fresh request should not be completed")
	}
	if req.Err() != nil {
		t.Error("Err should be nil before completion")
	}
	if req.Version() != "" {
		t.Error("Version should be empty before completion")
	}
}

func TestInstalled(t *testing.T) {
	client, cache := newTestClient(t, mapSource{})

	// Empty cache.
	list, err := client.Installed()
	if err != nil {
		t.Fatalf("Installed error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %v", list)
	}

	os.MkdirAll(filepath.Join(cache, "com.a.pkg@1.0.0"), 0755)
	os.MkdirAll(filepath.Join(cache, "com.b.pkg@2.0.0"), 0755)

	list, err = client.Installed()
	if err != nil {
		t.Fatalf("Installed error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 entries, got %v", list)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusConflict, "conflict"},
		{StatusForbidden, "forbidden"},
		{StatusInvalidParameter, "invalid-parameter"},
		{StatusNotFound, "not-found"},
		{StatusUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
