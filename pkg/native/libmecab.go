//go:build mecab

package native

import (
	"github.com/pkg/errors"
	gomecab "github.com/shogo82148/go-mecab"
)

const backendName = "libmecab"

func defaultBackend() OpenFunc { return OpenLibMecab }

type libTagger struct {
	m      gomecab.MeCab
	closed bool
}

// OpenLibMecab creates a Tagger on the libmecab linked into the binary,
// reading the dictionary in dictPath. The KO engine expects a libmecab built
// from mecab-ko and a mecab-ko-dic dictionary.
func OpenLibMecab(engine, dictPath string) (Tagger, error) {
	if engine != "jp" && engine != "ko" {
		return nil, errors.Wrapf(ErrUnsupportedEngine, "libmecab backend cannot serve %q", engine)
	}
	m, err := gomecab.New(map[string]string{"dicdir": dictPath})
	if err != nil {
		return nil, errors.Wrapf(err, "create %s tagger on %q", engine, dictPath)
	}
	return &libTagger{m: m}, nil
}

func (l *libTagger) Parse(text string) (string, error) {
	if l.closed {
		return "", ErrClosed
	}
	out, err := l.m.Parse(text)
	if err != nil {
		return "", errors.Wrap(err, "libmecab parse")
	}
	return out, nil
}

func (l *libTagger) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.m.Destroy()
	return nil
}
