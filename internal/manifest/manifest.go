package manifest

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/upmkit/upmkit/internal/errors"
)

// dependenciesKey is the literal key token located by textual scan.
const dependenciesKey = `"dependencies"`

// Registry is a scoped registry entry in the manifest.
type Registry struct {
	// Name identifies the registry. Uniqueness key among entries.
	Name string `json:"name"`

	// URL is the registry endpoint address.
	URL string `json:"url"`

	// Scopes are the package-identifier prefixes this registry serves.
	Scopes []string `json:"scopes"`
}

// Document is an in-memory package manifest.
//
// The scopedRegistries field is decoded structurally; the dependencies
// object is captured as raw text and reproduced verbatim on save. Only
// AddRegistry and Save mutate a Document.
type Document struct {
	// Registries holds the scopedRegistries entries in file order.
	Registries []Registry

	// rawDeps is the text between the braces of the dependencies value,
	// captured verbatim and never parsed.
	rawDeps string
	hasDeps bool

	// path is the file this document was loaded from and saves to.
	path string
}

// manifestFile is the structured subset of the manifest that survives
// an encoding/json round trip. The dependencies value is a placeholder;
// its real content is spliced back in textually on save.
type manifestFile struct {
	ScopedRegistries []Registry      `json:"scopedRegistries,omitempty"`
	Dependencies     json.RawMessage `json:"dependencies,omitempty"`
}

// Load reads and partially parses the manifest at path.
//
// The scopedRegistries field is decoded into Registries (absent field
// yields an empty sequence). The dependencies object is located by
// textual scan and captured between its braces without being parsed.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E201").WithPath(path).Wrap(err)
	}

	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.New("E202").WithPath(path).Wrap(err)
	}

	doc := &Document{
		Registries: file.ScopedRegistries,
		path:       path,
	}

	raw, found, err := captureDependencies(string(data))
	if err != nil {
		return nil, errors.New("E203").WithPath(path).Wrap(err)
	}
	if found {
		doc.rawDeps = raw
		doc.hasDeps = true
	}

	return doc, nil
}

// Path returns the file this document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// RawDependencies returns the captured dependencies region and whether
// the manifest had one.
func (d *Document) RawDependencies() (string, bool) {
	return d.rawDeps, d.hasDeps
}

// ContainsRegistry reports whether a registry with the given name is
// present. Name comparison is case-sensitive and exact.
func (d *Document) ContainsRegistry(name string) bool {
	for _, reg := range d.Registries {
		if reg.Name == name {
			return true
		}
	}
	return false
}

// AddRegistry appends a registry entry without checking for duplicates.
// Callers guard with ContainsRegistry first; the raw operation is not
// idempotent.
func (d *Document) AddRegistry(reg Registry) {
	d.Registries = append(d.Registries, reg)
}

// Save serializes the document and overwrites its source file.
//
// An empty registry sequence omits the scopedRegistries field entirely.
// The dependencies region captured at load time is spliced back between
// the braces of the freshly serialized dependencies value, character for
// character.
func (d *Document) Save() error {
	file := manifestFile{
		ScopedRegistries: d.Registries,
	}
	if d.hasDeps {
		file.Dependencies = json.RawMessage("{}")
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.New("E204").WithPath(d.path).Wrap(err)
	}
	text := string(data) + "\n"

	if d.hasDeps {
		open, close, err := locateDependencies(text)
		if err != nil {
			return errors.New("E203").WithPath(d.path).Wrap(err)
		}
		text = text[:open+1] + d.rawDeps + text[close:]
	}

	if err := os.WriteFile(d.path, []byte(text), 0644); err != nil {
		return errors.New("E204").WithPath(d.path).Wrap(err)
	}
	return nil
}

// captureDependencies extracts the text strictly between the braces of
// the dependencies value. found is false when the key is absent.
func captureDependencies(text string) (raw string, found bool, err error) {
	if !strings.Contains(text, dependenciesKey) {
		return "", false, nil
	}
	open, close, err := locateDependencies(text)
	if err != nil {
		return "", false, err
	}
	return text[open+1 : close], true, nil
}

// locateDependencies finds the brace span of the dependencies value:
// the first occurrence of the key token, the next '{' after it, and the
// first unescaped '}' after that. The scan has no nested-brace
// awareness; a dependencies object containing an unescaped '}' inside a
// string value defeats it.
func locateDependencies(text string) (open, close int, err error) {
	key := strings.Index(text, dependenciesKey)
	if key < 0 {
		return 0, 0, errors.Newf(errors.CategoryManifest, "dependencies key not found")
	}

	rel := strings.IndexByte(text[key:], '{')
	if rel < 0 {
		return 0, 0, errors.Newf(errors.CategoryManifest, "no opening brace after dependencies key")
	}
	open = key + rel

	for i := open + 1; i < len(text); i++ {
		if text[i] == '}' && text[i-1] != '\\' {
			return open, i, nil
		}
	}
	return 0, 0, errors.Newf(errors.CategoryManifest, "no closing brace after dependencies value")
}
