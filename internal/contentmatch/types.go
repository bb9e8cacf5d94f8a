package contentmatch

import (
	"time"

	"codeberg.org/creatorlens/server/creatorlens/commerceposts"
	"codeberg.org/creatorlens/server/creatorlens/posts"
)

// how a content post was linked to a commerce post
type MatchType string

const (
	MatchDirectURL  MatchType = "direct_url"
	MatchTimeWindow MatchType = "time_window"
	MatchKeyword    MatchType = "keyword"
	MatchNone       MatchType = "none"
)

const (
	ConfidenceDirectURL  = 0.95
	ConfidenceTimeWindow = 0.70
	ConfidenceKeyword    = 0.50
)

const (
	// commerce posts are often shared around the same time as the native post, in either order
	TimeWindow = 48 * time.Hour

	// keyword matches need a Jaccard score strictly above this
	KeywordThreshold = 0.30
)

// content engagement and commerce performance side by side
type CombinedMetrics struct {
	Impressions    int     `json:"impressions"`
	Reach          int     `json:"reach"`
	Engagement     int     `json:"engagement"`
	Clicks         int     `json:"clicks"`
	Revenue        float64 `json:"revenue"`
	ItemsSold      int     `json:"items_sold"`
	ConversionRate float64 `json:"conversion_rate"`
	ROAS           float64 `json:"roas"`
}

type MatchedContent struct {
	Post       posts.Post                  `json:"post"`
	Commerce   *commerceposts.CommercePost `json:"commerce"`
	MatchType  MatchType                   `json:"match_type"`
	Confidence float64                     `json:"confidence"`
	Metrics    CombinedMetrics             `json:"combined_metrics"`
}

// aggregate stats over a match set
type Summary struct {
	TotalPosts           int             `json:"total_posts"`
	MatchedPosts         int             `json:"matched_posts"`
	TotalRevenue         float64         `json:"total_revenue"`
	TotalEngagement      int             `json:"total_engagement"`
	TotalItemsSold       int             `json:"total_items_sold"`
	AvgRevenuePerPost    float64         `json:"avg_revenue_per_post"`
	AvgEngagementPerPost float64         `json:"avg_engagement_per_post"`
	TopPerformer         *MatchedContent `json:"top_performer"`
}
