package serve

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/upmkit/upmkit/internal/errors"
)

// packumentFile is the metadata document stored per package.
const packumentFile = "packument.json"

// Store reads and writes a local registry directory. Each package owns
// a subdirectory holding packument.json plus its tarballs:
//
//	<root>/com.example.pkg/packument.json
//	<root>/com.example.pkg/com.example.pkg-1.0.0.tgz
type Store struct {
	root string
}

// NewStore opens the registry directory at root.
func NewStore(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.New("E401").WithPath(root)
	}
	return &Store{root: root}, nil
}

// Root returns the directory the store serves from.
func (s *Store) Root() string {
	return s.root
}

// Packument returns the metadata document for a package.
func (s *Store) Packument(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.Base(name), packumentFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E302").WithPath(name)
		}
		return nil, errors.New("E301").WithPath(name).Wrap(err)
	}
	return data, nil
}

// Tarball returns the bytes of a package tarball. The file name is
// reduced to its base, so request paths cannot escape the store.
func (s *Store) Tarball(name, file string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.Base(name), filepath.Base(file)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E302").WithPath(name + "/-/" + file)
		}
		return nil, errors.New("E301").WithPath(name).Wrap(err)
	}
	return data, nil
}

// Packages lists the package names present in the store, sorted.
func (s *Store) Packages() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.New("E401").WithPath(s.root).Wrap(err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, entry.Name(), packumentFile)); err == nil {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Publish writes a package's packument and tarball into the store,
// creating its directory when needed.
func (s *Store) Publish(name string, packument []byte, tarballName string, tarball []byte) error {
	dir := filepath.Join(s.root, filepath.Base(name))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("E401").WithPath(dir).Wrap(err)
	}
	if err := os.WriteFile(filepath.Join(dir, packumentFile), packument, 0644); err != nil {
		return errors.New("E401").WithPath(dir).Wrap(err)
	}
	if tarballName != "" {
		if err := os.WriteFile(filepath.Join(dir, filepath.Base(tarballName)), tarball, 0644); err != nil {
			return errors.New("E401").WithPath(dir).Wrap(err)
		}
	}
	return nil
}
