package commerceposts

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

// the affiliate platform's aggregated performance record for a shared post
// read-only: attribution never writes these rows
type CommercePost struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	LTKID          string    `json:"ltk_id"`
	Permalink      string    `json:"permalink,omitempty"`
	Caption        string    `json:"caption,omitempty"` // often empty, the platform rarely returns text
	PublishedAt    time.Time `json:"published_at"`
	Clicks         int       `json:"clicks"`
	Revenue        float64   `json:"revenue"`
	ItemsSold      int       `json:"items_sold"`
	ConversionRate float64   `json:"conversion_rate"`
}

// a half-open [Start, End) window
type DateRange struct {
	Start time.Time
	End   time.Time
}

// returns the range covering the `days` days before end
func LastDays(end time.Time, days int) DateRange {
	return DateRange{Start: end.AddDate(0, 0, -days), End: end}
}
