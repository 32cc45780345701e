// Package article turns an HTML page into plain text ready for analysis.
package article

import (
	"bytes"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/pkg/errors"
)

// Article is the readable part of a page.
type Article struct {
	Title    string
	Byline   string
	SiteName string
	Text     string
}

var (
	// (?s) lets . cross newlines, (?i) ignores tag case.
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>) and ruby parentheses (<rp>) so
// furigana is not analyzed as part of the base text ("漢字かんじ").
// It works on bytes and is safe for Shift_JIS input, since '<' never appears
// as a Shift_JIS trailing byte.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, nil)
	return reRP.ReplaceAll(cleaned, nil)
}

// Extract reads an HTML document and returns its main content. pageURL is
// used to resolve relative links and may be nil.
func Extract(r io.Reader, pageURL *url.URL) (Article, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Article{}, errors.Wrap(err, "read html")
	}
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	a, err := readability.FromReader(bytes.NewReader(SanitizeRuby(content)), pageURL)
	if err != nil {
		return Article{}, errors.Wrap(err, "extract article")
	}
	return Article{
		Title:    strings.TrimSpace(a.Title),
		Byline:   a.Byline,
		SiteName: a.SiteName,
		Text:     a.TextContent,
	}, nil
}

// SplitSentences splits text after 。, ！, ？ and newlines. Blank sentences
// are dropped; delimiters stay with the sentence they end.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	flush := func() {
		if s := current.String(); strings.TrimSpace(s) != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	for _, r := range text {
		current.WriteRune(r)
		if r == '。' || r == '！' || r == '？' || r == '\n' {
			flush()
		}
	}
	flush()
	return sentences
}
