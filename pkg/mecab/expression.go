package mecab

import "strings"

// ExpressionToken is one morpheme of a KO compound expression, decoded from a
// "morpheme/POS/semanticClass" part.
type ExpressionToken struct {
	features []string
}

// NewExpressionToken decodes one "+" separated part of an expression field.
// Missing fields read as absent.
func NewExpressionToken(raw string) ExpressionToken {
	return ExpressionToken{features: strings.Split(raw, "/")}
}

// Morpheme returns the morpheme text.
func (e ExpressionToken) Morpheme() string {
	if len(e.features) == 0 {
		return ""
	}
	return e.features[0]
}

// POS returns the morpheme's part-of-speech tag.
func (e ExpressionToken) POS() (string, bool) {
	if len(e.features) < 2 {
		return "", false
	}
	return e.features[1], true
}

// SemanticClass returns the morpheme's semantic class.
func (e ExpressionToken) SemanticClass() (string, bool) {
	if len(e.features) < 3 || e.features[2] == EMPTY {
		return "", false
	}
	return e.features[2], true
}
