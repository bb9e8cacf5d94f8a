package posts

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

// a creator's native social post
// AttributedRevenue and AttributedSales are rollups written by attribution runs
type Post struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Platform          string    `json:"platform"`
	ExternalPostID    string    `json:"external_post_id,omitempty"`
	PostURL           string    `json:"post_url,omitempty"`
	PostType          string    `json:"post_type,omitempty"`
	Caption           string    `json:"caption"`
	PublishedAt       time.Time `json:"published_at"`
	Likes             int       `json:"likes"`
	Comments          int       `json:"comments"`
	Shares            int       `json:"shares"`
	Saves             int       `json:"saves"`
	Views             int       `json:"views"`
	Reach             int       `json:"reach"`
	EngagementRate    float64   `json:"engagement_rate"`
	AttributedRevenue float64   `json:"attributed_revenue"`
	AttributedSales   int       `json:"attributed_sales"`
}

// reports whether the row carries the fields attribution needs
func (p Post) Valid() bool {
	return p.ID != "" && !p.PublishedAt.IsZero()
}

// likes + comments + shares + saves
func (p Post) Engagement() int {
	return p.Likes + p.Comments + p.Shares + p.Saves
}

// reports whether the post currently carries a non-zero rollup
func (p Post) HasRollup() bool {
	return p.AttributedRevenue != 0 || p.AttributedSales != 0
}
