// Package native is the boundary to the morphological engine that does the
// actual analysis. A Tagger turns text into MeCab's default output format:
// one "surface\tfeature,feature,..." line per morpheme followed by an EOS line.
package native

import (
	"sync"

	"github.com/pkg/errors"
)

// EOS terminates the output of one Parse call.
const EOS = "EOS"

var (
	// ErrUnsupportedEngine is returned by a backend that cannot serve the
	// requested engine.
	ErrUnsupportedEngine = errors.New("engine not supported by this backend")
	// ErrClosed is returned by Parse after Close.
	ErrClosed = errors.New("tagger closed")
)

// Tagger is one native engine instance bound to a dictionary.
// Implementations are not required to be safe for concurrent use.
type Tagger interface {
	Parse(text string) (string, error)
	Close() error
}

// OpenFunc creates a Tagger for engine ("jp" or "ko") reading the compiled
// dictionary in dictPath.
type OpenFunc func(engine, dictPath string) (Tagger, error)

var (
	backendOnce sync.Once
	backend     OpenFunc
)

// Open creates a Tagger with the backend selected at build time. The backend
// is initialized on first use and kept for the life of the process.
func Open(engine, dictPath string) (Tagger, error) {
	backendOnce.Do(func() {
		backend = defaultBackend()
	})
	return backend(engine, dictPath)
}

// Backend names the backend Open uses in this build.
func Backend() string { return backendName }
