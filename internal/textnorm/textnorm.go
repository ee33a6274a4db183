// Package textnorm normalizes raw paper text into stemmed tokens.
// The same pipeline runs on both the indexing and the query path, so
// any change here invalidates every built index.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

// MinTokenLen is the shortest token that survives normalization.
const MinTokenLen = 3

var (
	htmlTags   = regexp.MustCompile(`<[^>]+>`)
	nonLetters = regexp.MustCompile(`[^a-z0-9]+`)
	alphaNum   = regexp.MustCompile(`([a-z]+)([0-9]+)`)
	numAlpha   = regexp.MustCompile(`([0-9]+)([a-z]+)`)
	pureDigits = regexp.MustCompile(`^[0-9]+$`)
)

// Tokenize runs the full normalization pipeline: case-fold, strip HTML
// tags, drop punctuation, split alpha↔digit runs ("covid19" → "covid 19"),
// remove pure-digit and stopword tokens, drop tokens shorter than
// MinTokenLen and Porter-stem the rest. Empty input yields an empty
// result, and the output is a fixed point of the pipeline.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	s := strings.ToLower(text)
	s = htmlTags.ReplaceAllString(s, " ")
	s = nonLetters.ReplaceAllString(s, " ")
	s = alphaNum.ReplaceAllString(s, "$1 $2")
	s = numAlpha.ReplaceAllString(s, "$1 $2")

	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if pureDigits.MatchString(tok) {
			continue
		}
		if Stopwords[tok] {
			continue
		}
		if len(tok) < MinTokenLen {
			continue
		}
		stemmed := english.Stem(tok, false)
		if stemmed == "" {
			// Stemmer rejects malformed input; keep the raw token.
			stemmed = tok
		}
		tokens = append(tokens, stemmed)
	}
	return tokens
}
