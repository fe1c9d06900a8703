package setup

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/upmkit/upmkit/internal/errors"
	"github.com/upmkit/upmkit/internal/manifest"
	"github.com/upmkit/upmkit/internal/registry"
	"github.com/upmkit/upmkit/internal/upm"
)

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

type recordingNotifier struct {
	paths []string
}

func (n *recordingNotifier) Changed(paths ...string) {
	n.paths = append(n.paths, paths...)
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testOptions(t *testing.T, manifestPath string, src registry.Source) Options {
	t.Helper()
	cache := filepath.Join(t.TempDir(), "packages")
	return Options{
		ManifestPath: manifestPath,
		Registry: manifest.Registry{
			Name:   "Magic Leap",
			URL:    "https://registry.npmjs.org",
			Scopes: []string{"com.magicleap"},
		},
		Package: "com.magicleap.unitysdk",
		Timeout: 5 * time.Second,
		Client:  upm.NewClient(registry.NewClient(src), cache),
	}
}

func TestRun_FreshProject(t *testing.T) {
	path := writeManifest(t, `{"dependencies": {"com.example.pkg": "1.0.0"}}`)
	src := testSource("com.magicleap.unitysdk", "2.6.0", []byte("tarball"))

	notifier := &recordingNotifier{}
	opts := testOptions(t, path, src)
	opts.Notifier = notifier

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.RegistryAdded {
		t.Error("expected RegistryAdded")
	}
	if res.AlreadyConfigured {
		t.Error("unexpected AlreadyConfigured")
	}
	if res.InstalledVersion != "2.6.0" {
		t.Errorf("InstalledVersion = %q, want %q", res.InstalledVersion, "2.6.0")
	}
	if len(notifier.paths) != 1 || notifier.paths[0] != path {
		t.Errorf("notifier paths = %v, want [%s]", notifier.paths, path)
	}

	doc, err := manifest.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !doc.ContainsRegistry("Magic Leap") {
		t.Error("registry missing after run")
	}
	raw, ok := doc.RawDependencies()
	if !ok || raw != `"com.example.pkg": "1.0.0"` {
		t.Errorf("dependencies block changed: %q", raw)
	}
}

func TestRun_AlreadyConfigured(t *testing.T) {
	path := writeManifest(t, `{
  "scopedRegistries": [
    {"name": "Magic Leap", "url": "https://registry.npmjs.org", "scopes": ["com.magicleap"]}
  ],
  "dependencies": {}
}`)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	src := testSource("com.magicleap.unitysdk", "2.6.0", []byte("tarball"))
	notifier := &recordingNotifier{}
	opts := testOptions(t, path, src)
	opts.Notifier = notifier

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.AlreadyConfigured {
		t.Error("expected AlreadyConfigured")
	}
	if res.RegistryAdded {
		t.Error("unexpected RegistryAdded")
	}
	if len(notifier.paths) != 0 {
		t.Errorf("notifier fired for untouched manifest: %v", notifier.paths)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("manifest rewritten despite short-circuit")
	}
}

func TestRun_ConflictIsSuccess(t *testing.T) {
	path := writeManifest(t, `{"dependencies": {}}`)
	src := testSource("com.magicleap.unitysdk", "2.6.0", []byte("tarball"))

	opts := testOptions(t, path, src)
	staged := filepath.Join(opts.Client.CacheDir(), "com.magicleap.unitysdk@2.6.0")
	if err := os.MkdirAll(staged, 0755); err != nil {
		t.Fatal(err)
	}

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.AlreadyInstalled {
		t.Error("expected AlreadyInstalled")
	}
	if res.InstalledVersion != "2.6.0" {
		t.Errorf("InstalledVersion = %q, want %q", res.InstalledVersion, "2.6.0")
	}
}

func TestRun_PackageOutsideScopes(t *testing.T) {
	path := writeManifest(t, `{"dependencies": {}}`)
	src := testSource("com.other.pkg", "1.0.0", []byte("tarball"))

	opts := testOptions(t, path, src)
	opts.Package = "com.other.pkg"

	_, err := Run(context.Background(), opts)
	if errors.CodeOf(err) != "E312" {
		t.Fatalf("expected E312, got %v", err)
	}

	// The registry patch still happened; only the install was refused.
	doc, loadErr := manifest.Load(path)
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if !doc.ContainsRegistry("Magic Leap") {
		t.Error("registry missing after refused install")
	}
}

func TestRun_MissingManifest(t *testing.T) {
	src := testSource("com.magicleap.unitysdk", "2.6.0", nil)
	opts := testOptions(t, filepath.Join(t.TempDir(), "missing.json"), src)

	_, err := Run(context.Background(), opts)
	if errors.CodeOf(err) != "E201" {
		t.Fatalf("expected E201, got %v", err)
	}
}

func TestRun_PackageNotFound(t *testing.T) {
	path := writeManifest(t, `{"dependencies": {}}`)
	opts := testOptions(t, path, mapSource{})

	_, err := Run(context.Background(), opts)
	if errors.CodeOf(err) != "E310" {
		t.Fatalf("expected E310, got %v", err)
	}
	// The registry must still have been written before the install failed.
	doc, loadErr := manifest.Load(path)
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if !doc.ContainsRegistry("Magic Leap") {
		t.Error("registry missing after failed install")
	}
}

func TestRun_NoPackage(t *testing.T) {
	path := writeManifest(t, `{"dependencies": {}}`)
	opts := testOptions(t, path, mapSource{})
	opts.Package = ""

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.RegistryAdded {
		t.Error("expected RegistryAdded")
	}
}
