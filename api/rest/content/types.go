package content

import (
	"codeberg.org/creatorlens/server/internal/contentmatch"
)

const (
	dateLayout        = "2006-01-02"
	defaultWindowDays = 30
	maxWindowDays     = 366
)

type MatchesResponse struct {
	Start   string                        `json:"start"`
	End     string                        `json:"end"`
	Matches []contentmatch.MatchedContent `json:"matches"`
	Summary contentmatch.Summary          `json:"summary"`
}

type LinksRequest struct {
	Text string `json:"text" binding:"max=10000"`
}

type LinksResponse struct {
	Links []string `json:"links"`
}
