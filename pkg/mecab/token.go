package mecab

import (
	"strings"

	"github.com/pkg/errors"
)

// mecab-ko-dic feature positions.
const (
	koPOS = iota
	koSemanticClass
	koBatchim
	koReading
	koType
	koStartPOS
	koEndPOS
	koExpression
)

// field is one feature value with the EMPTY sentinel already resolved.
type field struct {
	value string
	set   bool
}

// Token is one line of MeCab output: a surface form and its features.
//
// Accessors other than Engine, Surface, Features and Raw interpret the
// features with the mecab-ko-dic schema. For JP tokens they report no value.
type Token struct {
	engine   Engine
	surface  string
	features []string
	fields   []field
}

// NewToken decodes a raw "surface\tf1,f2,..." line produced by engine.
func NewToken(engine Engine, raw string) (Token, error) {
	if !engine.Valid() {
		return Token{}, errors.Wrapf(ErrUnsupportedEngine, "%q is not a supported mecab engine", string(engine))
	}
	surface, rest, ok := strings.Cut(raw, "\t")
	if !ok {
		return Token{}, errors.Wrapf(ErrMalformedToken, "no tab in %q", raw)
	}

	features := strings.Split(rest, ",")
	fields := make([]field, len(features))
	for i, f := range features {
		fields[i] = field{value: f, set: f != EMPTY}
	}
	return Token{
		engine:   engine,
		surface:  surface,
		features: features,
		fields:   fields,
	}, nil
}

// Engine returns the engine that produced the token.
func (t Token) Engine() Engine { return t.engine }

// Surface returns the matched text span.
func (t Token) Surface() string { return t.surface }

// Features returns a copy of the comma separated features, unresolved.
func (t Token) Features() []string {
	out := make([]string, len(t.features))
	copy(out, t.features)
	return out
}

// Raw rebuilds the line the token was decoded from.
func (t Token) Raw() string {
	return t.surface + "\t" + strings.Join(t.features, ",")
}

// ko returns feature i of a KO token. Out of range, EMPTY and JP tokens all
// report ok == false.
func (t Token) ko(i int) (string, bool) {
	if t.engine != KO || i >= len(t.fields) {
		return "", false
	}
	f := t.fields[i]
	return f.value, f.set
}

// POS returns the part-of-speech tags, split on "+" for compound tags.
func (t Token) POS() ([]string, bool) {
	if t.engine != KO || len(t.features) == 0 {
		return nil, false
	}
	return strings.Split(t.features[koPOS], "+"), true
}

// SemanticClass returns the semantic class, e.g. "인명".
func (t Token) SemanticClass() (string, bool) {
	return t.ko(koSemanticClass)
}

// HasBatchim reports whether the last syllable ends in a final consonant.
// ok is false when the dictionary does not say.
func (t Token) HasBatchim() (has bool, ok bool) {
	v, ok := t.ko(koBatchim)
	if !ok {
		return false, false
	}
	return v == "T", true
}

// HasJongseong is an alias of HasBatchim.
func (t Token) HasJongseong() (bool, bool) {
	return t.HasBatchim()
}

// Pronunciation returns the pronunciation (the reading field).
func (t Token) Pronunciation() (string, bool) {
	return t.ko(koReading)
}

// Reading returns the reading; it shares the field with Pronunciation.
func (t Token) Reading() (string, bool) {
	return t.ko(koReading)
}

// Type returns the token type: Inflect, Compound or Preanalysis.
func (t Token) Type() (string, bool) {
	return t.ko(koType)
}

// Base returns the base form. Typed tokens with an expression use the first
// morpheme of the expression; everything else uses the surface.
func (t Token) Base() (string, bool) {
	if t.engine != KO {
		return "", false
	}
	_, typed := t.ko(koType)
	expr, hasExpr := t.ko(koExpression)
	if typed && hasExpr {
		morpheme, _, _ := strings.Cut(expr, "/")
		return morpheme, true
	}
	return t.surface, true
}

// Expression decomposes the compound expression field into its morphemes.
// Unlike Base it only looks at the expression field itself.
func (t Token) Expression() ([]ExpressionToken, bool) {
	expr, ok := t.ko(koExpression)
	if !ok {
		return nil, false
	}
	parts := strings.Split(expr, "+")
	out := make([]ExpressionToken, len(parts))
	for i, p := range parts {
		out[i] = NewExpressionToken(p)
	}
	return out, true
}

// String returns Raw.
func (t Token) String() string { return t.Raw() }
