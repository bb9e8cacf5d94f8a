package attribution

import (
	"sort"
	"strings"
	"time"

	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
	"codeberg.org/creatorlens/server/internal/textmatch"
)

type candidate struct {
	post    posts.Post
	tokens  textmatch.Tokens
	caption string // lowercased
}

// links sales to the post that most plausibly generated them
// candidates are kept newest first, then by id, so the first hit of a
// scan is the closest-in-time post with a stable tie-break
type Matcher struct {
	candidates []candidate
}

// builds a matcher over the user's posts; invalid and duplicate posts are dropped
func NewMatcher(list []posts.Post) *Matcher {
	seen := make(map[string]struct{}, len(list))
	candidates := make([]candidate, 0, len(list))

	for _, p := range list {
		if !p.Valid() {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}

		candidates = append(candidates, candidate{
			post:    p,
			tokens:  textmatch.Tokenize(p.Caption),
			caption: strings.ToLower(p.Caption),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].post, candidates[j].post
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})

	return &Matcher{candidates: candidates}
}

// runs the tiers in priority order and returns the first match
func (m *Matcher) Match(sale sales.Sale) (Attribution, bool) {
	if !sale.Valid() {
		return Attribution{}, false
	}

	eligible := m.eligible(sale)
	if len(eligible) == 0 {
		return Attribution{}, false
	}

	if post, ok := matchByProduct(sale, eligible); ok {
		return newAttribution(sale, post, ConfidenceProductMatch, MethodProductMatch), true
	}

	if post, ok := matchByTimeWindow(sale, eligible); ok {
		return newAttribution(sale, post, ConfidenceTimeWindow, MethodTimeWindow), true
	}

	if post, ok := matchByPlatform(sale, eligible); ok {
		return newAttribution(sale, post, ConfidencePlatformMatch, MethodPlatformMatch), true
	}

	return Attribution{}, false
}

// posts published strictly before the sale
func (m *Matcher) eligible(sale sales.Sale) []candidate {
	var out []candidate
	for _, c := range m.candidates {
		if c.post.PublishedAt.Before(sale.SaleDate) {
			out = append(out, c)
		}
	}
	return out
}

// tier A: caption shares a keyword with the product name inside the window
func matchByProduct(sale sales.Sale, eligible []candidate) (posts.Post, bool) {
	productTokens := textmatch.Tokenize(sale.ProductName)
	if productTokens.Len() == 0 {
		return posts.Post{}, false
	}

	for _, c := range eligible {
		if !within(c, sale, AttributionWindow) {
			continue
		}
		if c.tokens.Intersects(productTokens) {
			return c.post, true
		}
	}

	return posts.Post{}, false
}

// tier B: the window holds exactly one post; two or more is ambiguous
func matchByTimeWindow(sale sales.Sale, eligible []candidate) (posts.Post, bool) {
	var (
		found posts.Post
		count int
	)

	for _, c := range eligible {
		if !within(c, sale, AttributionWindow) {
			continue
		}
		count++
		if count > 1 {
			return posts.Post{}, false
		}
		found = c.post
	}

	return found, count == 1
}

// tier C: caption mentions the sale platform inside the short window
func matchByPlatform(sale sales.Sale, eligible []candidate) (posts.Post, bool) {
	platform := strings.ToLower(strings.TrimSpace(sale.Platform))
	if platform == "" {
		return posts.Post{}, false
	}

	for _, c := range eligible {
		if !within(c, sale, ShortWindow) {
			continue
		}
		if strings.Contains(c.caption, platform) {
			return c.post, true
		}
	}

	return posts.Post{}, false
}

// eligible candidates are already before the sale, so only the upper bound matters
func within(c candidate, sale sales.Sale, window time.Duration) bool {
	return sale.SaleDate.Sub(c.post.PublishedAt) <= window
}

func newAttribution(sale sales.Sale, post posts.Post, confidence float64, method Method) Attribution {
	return Attribution{
		SaleID:     sale.ID,
		PostID:     post.ID,
		Confidence: confidence,
		Method:     method,
	}
}
