package mecab

import (
	"strings"

	"github.com/pkg/errors"
)

// Engine selects the MeCab build and the dictionary feature schema.
type Engine string

const (
	// JP is the original MeCab with an IPA-style dictionary.
	JP Engine = "jp"
	// KO is the mecab-ko patch with mecab-ko-dic.
	KO Engine = "ko"
)

// EMPTY is the feature value MeCab dictionaries use for an unset field.
const EMPTY = "*"

// Default dictionary locations used when Options.DictPath is empty.
var defaultDictPaths = map[Engine]string{
	JP: "/usr/local/lib/mecab/dic/ipadic",
	KO: "/usr/local/lib/mecab/dic/mecab-ko-dic",
}

// ParseEngine normalizes s and returns the matching Engine.
func ParseEngine(s string) (Engine, error) {
	e := Engine(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", errors.Wrapf(ErrConfig, "%q is not a supported mecab engine", s)
	}
	return e, nil
}

// Valid reports whether e is JP or KO.
func (e Engine) Valid() bool {
	return e == JP || e == KO
}

func (e Engine) String() string { return string(e) }

// DefaultDictPath returns the built-in dictionary directory for e.
func DefaultDictPath(e Engine) string {
	return defaultDictPaths[e]
}
