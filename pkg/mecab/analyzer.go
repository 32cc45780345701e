package mecab

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/japaniel/mecab/pkg/dictionary"
	"github.com/japaniel/mecab/pkg/native"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Options configures New. The zero value selects the JP engine with its
// default dictionary and the build's native backend.
type Options struct {
	// Engine is "jp" or "ko". Empty means "jp".
	Engine string
	// DictPath overrides the engine's default dictionary directory. It is
	// trimmed; only the empty string selects the default.
	DictPath string
	// Logger receives debug output. nil disables logging.
	Logger *zap.Logger
	// Open replaces the native backend. nil means native.Open.
	Open native.OpenFunc
}

// Analyzer parses text with one native tagger bound to one dictionary.
type Analyzer struct {
	engine   Engine
	dictPath string
	log      *zap.Logger

	mu     sync.Mutex
	tagger native.Tagger
}

// New validates opts and the dictionary directory, then starts a tagger.
func New(opts Options) (*Analyzer, error) {
	engine := JP
	if opts.Engine != "" {
		e, err := ParseEngine(opts.Engine)
		if err != nil {
			return nil, err
		}
		engine = e
	}

	dictPath := DefaultDictPath(engine)
	if opts.DictPath != "" {
		// a blank override is not a request for the default
		dictPath = strings.TrimSpace(opts.DictPath)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("engine", engine.String()), zap.String("dict", dictPath))

	if err := dictionary.Validate(dictPath); err != nil {
		if errors.Is(err, dictionary.ErrNotFound) {
			return nil, classify(ErrDictionaryNotFound, "", err)
		}
		return nil, classify(ErrDictionaryIncomplete, "", err)
	}

	open := opts.Open
	if open == nil {
		open = native.Open
		log = log.With(zap.String("backend", native.Backend()))
	}
	tagger, err := open(engine.String(), dictPath)
	if err != nil {
		return nil, classify(ErrNativeEngine, "init", err)
	}
	log.Debug("analyzer ready")

	return &Analyzer{
		engine:   engine,
		dictPath: dictPath,
		log:      log,
		tagger:   tagger,
	}, nil
}

// Engine returns the engine the Analyzer was built with.
func (a *Analyzer) Engine() Engine { return a.engine }

// DictPath returns the resolved dictionary directory.
func (a *Analyzer) DictPath() string { return a.dictPath }

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// Parse tokenizes text. Tokens are returned in output order; the EOS line and
// anything after it are dropped. Either every line decodes or Parse fails.
func (a *Analyzer) Parse(text string) ([]Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.tagger == nil {
		return nil, ErrClosed
	}

	raw, err := a.tagger.Parse(text)
	if err != nil {
		return nil, classify(ErrNativeEngine, "parse", err)
	}

	tokens := make([]Token, 0)
	for _, line := range lineBreaks.Split(raw, -1) {
		if line == native.EOS {
			break
		}
		if line == "" {
			continue
		}
		tok, err := NewToken(a.engine, line)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	a.log.Debug("parsed", zap.Int("runes", utf8.RuneCountInString(text)), zap.Int("tokens", len(tokens)))
	return tokens, nil
}

// Close releases the native tagger. Parse fails with ErrClosed afterwards.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.tagger == nil {
		return nil
	}
	err := a.tagger.Close()
	a.tagger = nil
	return err
}
