//go:build !mecab

package native

import (
	"strings"
	"sync"

	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"github.com/pkg/errors"
)

const backendName = "kagome"

// The embedded IPA dictionary is large; load it once, on first JP request.
var ipaDict = sync.OnceValue(func() *dict.Dict { return ipa.Dict() })

func defaultBackend() OpenFunc { return OpenKagome }

// kagomeTagger renders kagome tokens in MeCab's output format so the rest of
// the package does not depend on kagome directly.
type kagomeTagger struct {
	t      *tokenizer.Tokenizer
	closed bool
}

// OpenKagome creates a pure-Go Tagger backed by kagome and its embedded IPA
// dictionary, which mirrors the ipadic build MeCab ships for JP. dictPath is
// only checked by the caller; the embedded dictionary is always used. KO is
// not available.
func OpenKagome(engine, dictPath string) (Tagger, error) {
	if engine != "jp" {
		return nil, errors.Wrapf(ErrUnsupportedEngine, "kagome backend cannot serve %q", engine)
	}
	t, err := tokenizer.New(ipaDict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, errors.Wrap(err, "create kagome tokenizer")
	}
	return &kagomeTagger{t: t}, nil
}

func (k *kagomeTagger) Parse(text string) (string, error) {
	if k.closed {
		return "", ErrClosed
	}
	var b strings.Builder
	for _, tok := range k.t.Tokenize(text) {
		if tok.Class == tokenizer.DUMMY {
			continue
		}
		// MeCab skips whitespace instead of emitting it as a morpheme.
		if strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		b.WriteString(tok.Surface)
		b.WriteByte('\t')
		b.WriteString(strings.Join(tok.Features(), ","))
		b.WriteByte('\n')
	}
	b.WriteString(EOS)
	b.WriteByte('\n')
	return b.String(), nil
}

func (k *kagomeTagger) Close() error {
	k.closed = true
	k.t = nil
	return nil
}
