// Package contentmatch links native social posts to the affiliate platform's
// aggregated commerce posts for read-time reporting. Nothing here persists.
package contentmatch

import (
	"sort"
	"strings"
	"time"

	"codeberg.org/creatorlens/server/creatorlens/commerceposts"
	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/internal/textmatch"
)

type commerceCandidate struct {
	post   commerceposts.CommercePost
	tokens textmatch.Tokens
}

// matches every content post against the commerce posts and returns the
// results ordered by revenue, then engagement, both descending
func MatchContentToCommerce(contentPosts []posts.Post, commercePosts []commerceposts.CommercePost) []MatchedContent {
	candidates := make([]commerceCandidate, 0, len(commercePosts))
	for _, cp := range commercePosts {
		candidates = append(candidates, commerceCandidate{
			post:   cp,
			tokens: textmatch.Tokenize(cp.Caption),
		})
	}

	// fixed scan order so equal-scoring candidates resolve the same way every time
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].post, candidates[j].post
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		return a.ID < b.ID
	})

	matches := make([]MatchedContent, 0, len(contentPosts))
	for _, p := range contentPosts {
		matches = append(matches, matchOne(p, candidates))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Metrics, matches[j].Metrics
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Engagement > b.Engagement
	})

	return matches
}

func matchOne(p posts.Post, candidates []commerceCandidate) MatchedContent {
	m := MatchedContent{Post: p, MatchType: MatchNone}

	if cp, ok := matchByDirectURL(p, candidates); ok {
		m.Commerce, m.MatchType, m.Confidence = cp, MatchDirectURL, ConfidenceDirectURL
	} else if cp, ok := matchByTimeWindow(p, candidates); ok {
		m.Commerce, m.MatchType, m.Confidence = cp, MatchTimeWindow, ConfidenceTimeWindow
	} else if cp, ok := matchByKeywords(p, candidates); ok {
		m.Commerce, m.MatchType, m.Confidence = cp, MatchKeyword, ConfidenceKeyword
	}

	m.Metrics = combine(p, m.Commerce)
	return m
}

func matchByDirectURL(p posts.Post, candidates []commerceCandidate) (*commerceposts.CommercePost, bool) {
	slugs := textmatch.ExtractLinks(p.Caption)
	if len(slugs) == 0 {
		return nil, false
	}

	for i := range candidates {
		permalink := candidates[i].post.Permalink
		if permalink == "" {
			continue
		}
		for _, slug := range slugs {
			if strings.Contains(permalink, slug) {
				return &candidates[i].post, true
			}
		}
	}

	return nil, false
}

func matchByTimeWindow(p posts.Post, candidates []commerceCandidate) (*commerceposts.CommercePost, bool) {
	if p.PublishedAt.IsZero() {
		return nil, false
	}

	var (
		best      *commerceposts.CommercePost
		bestDelta time.Duration
	)

	for i := range candidates {
		cp := &candidates[i].post
		if cp.PublishedAt.IsZero() {
			continue
		}

		delta := absDuration(cp.PublishedAt.Sub(p.PublishedAt))
		if delta > TimeWindow {
			continue
		}

		if best == nil || delta < bestDelta {
			best, bestDelta = cp, delta
		}
	}

	return best, best != nil
}

func matchByKeywords(p posts.Post, candidates []commerceCandidate) (*commerceposts.CommercePost, bool) {
	tokens := textmatch.Tokenize(p.Caption)
	if tokens.Len() == 0 {
		return nil, false
	}

	var (
		best      *commerceposts.CommercePost
		bestScore float64
	)

	for i := range candidates {
		// commerce posts without text score 0 and never qualify
		score := textmatch.Jaccard(tokens, candidates[i].tokens)
		if score > KeywordThreshold && score > bestScore {
			best, bestScore = &candidates[i].post, score
		}
	}

	return best, best != nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
