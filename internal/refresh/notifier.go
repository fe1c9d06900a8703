// Package refresh signals editors that manifest or registry content
// changed on disk and should be re-imported.
package refresh

import (
	"os"
	"path/filepath"
	"time"
)

// Notifier is told after a successful manifest or package write.
type Notifier interface {
	// Changed reports the files that were rewritten.
	Changed(paths ...string)
}

// Nop is a Notifier that does nothing.
type Nop struct{}

// Changed implements Notifier.
func (Nop) Changed(...string) {}

// Stamp rewrites a stamp file after every change. Editors that cannot
// be notified directly watch the stamp's mtime instead.
type Stamp struct {
	// Path is the stamp file location.
	Path string
}

// Changed implements Notifier. Failures are deliberately swallowed;
// the stamp is a courtesy signal, not part of the write.
func (s Stamp) Changed(...string) {
	if s.Path == "" {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.Path), 0755)
	now := time.Now()
	if err := os.Chtimes(s.Path, now, now); err != nil {
		_ = os.WriteFile(s.Path, []byte(now.UTC().Format(time.RFC3339)+"\n"), 0644)
	}
}
