package attribution

import (
	"time"

	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
)

// the tier that produced an attribution
type Method string

const (
	MethodProductMatch  Method = "PRODUCT_MATCH"
	MethodTimeWindow    Method = "TIME_WINDOW"
	MethodPlatformMatch Method = "PLATFORM_MATCH"
)

// fixed per-tier confidence, not a calibrated probability
const (
	ConfidenceProductMatch  = 0.95
	ConfidenceTimeWindow    = 0.60
	ConfidencePlatformMatch = 0.50
)

const (
	// posts older than this before a sale never explain it
	AttributionWindow = 7 * 24 * time.Hour

	// narrower window for the platform mention tier
	ShortWindow = 3 * 24 * time.Hour
)

// a scored link from one sale to one post
type Attribution struct {
	SaleID     string  `json:"sale_id"`
	PostID     string  `json:"post_id"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
}

// an attribution joined with display fields of its sale and post
type AttributionDetail struct {
	Attribution
	ProductName     string    `json:"product_name"`
	Amount          float64   `json:"amount"`
	SaleDate        time.Time `json:"sale_date"`
	Platform        string    `json:"platform"`
	PostCaption     string    `json:"post_caption"`
	PostPublishedAt time.Time `json:"post_published_at"`
}

// aggregated revenue and sale count for one post
type Rollup struct {
	PostID  string  `json:"post_id"`
	Revenue float64 `json:"revenue"`
	Sales   int     `json:"sales"`
}

// everything a run writes, computed before anything is applied
type Plan struct {
	RunID        string
	UserID       string
	StartedAt    time.Time
	Attributions []Attribution
	Rollups      []Rollup
	SkippedSales int
	SkippedPosts int
}

// what the store reports after applying a plan
type Applied struct {
	PostsUpdated int
	PostsZeroed  int
}

const RunStatusCompleted = "completed"

// a completed recompute, stored alongside the attributions it produced
type Run struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	Status              string    `json:"status"`
	AttributionsCreated int       `json:"attributions_created"`
	PostsUpdated        int       `json:"posts_updated"`
	PostsZeroed         int       `json:"posts_zeroed"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
}

// returned by RunAttribution
type Result struct {
	RunID               string `json:"run_id"`
	AttributionsCreated int    `json:"attributions_created"`
	PostsUpdated        int    `json:"posts_updated"`
	PostsZeroed         int    `json:"posts_zeroed"`
	SkippedSales        int    `json:"skipped_sales"`
	SkippedPosts        int    `json:"skipped_posts"`
}

// the inputs of a run, as supplied by the collaborating stores
type Snapshot struct {
	Sales []sales.Sale
	Posts []posts.Post
}
