// Package textmatch normalizes free text for the attribution matchers:
// keyword tokenization, affiliate link extraction and set similarity.
package textmatch

import (
	"regexp"
	"sort"
	"strings"
)

// minimum token length is encoded in wordPattern
var (
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	hashtagPattern = regexp.MustCompile(`#\S+`)
	mentionPattern = regexp.MustCompile(`@\S+`)
	wordPattern    = regexp.MustCompile(`\b[a-z]{3,}\b`)
)

var stopWords = map[string]struct{}{
	"the":  {},
	"and":  {},
	"for":  {},
	"with": {},
	"this": {},
	"that": {},
	"from": {},
	"have": {},
	"are":  {},
	"was":  {},
}

// a canonical keyword set
type Tokens map[string]struct{}

// lowercases text, strips urls, hashtags and mentions, and returns
// the remaining alphabetic words of 3+ letters minus stopwords
func Tokenize(text string) Tokens {
	tokens := make(Tokens)
	if text == "" {
		return tokens
	}

	cleaned := strings.ToLower(text)
	cleaned = urlPattern.ReplaceAllString(cleaned, "")
	cleaned = hashtagPattern.ReplaceAllString(cleaned, "")
	cleaned = mentionPattern.ReplaceAllString(cleaned, "")

	for _, word := range wordPattern.FindAllString(cleaned, -1) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		tokens[word] = struct{}{}
	}

	return tokens
}

func (t Tokens) Has(token string) bool {
	_, ok := t[token]
	return ok
}

func (t Tokens) Len() int {
	return len(t)
}

// reports whether the two sets share at least one token
func (t Tokens) Intersects(other Tokens) bool {
	small, large := t, other
	if len(small) > len(large) {
		small, large = large, small
	}

	for token := range small {
		if large.Has(token) {
			return true
		}
	}

	return false
}

// returns the tokens in lexical order
func (t Tokens) Sorted() []string {
	out := make([]string, 0, len(t))
	for token := range t {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}
