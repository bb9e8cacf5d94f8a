package commerceposts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// returns the user's commerce posts published inside the range
func (r *Repository) ListByUser(ctx context.Context, userID string, window DateRange) ([]CommercePost, error) {
	rows, err := r.db.Query(ctx, queryListInRange, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query commerce posts: %w", err)
	}

	defer rows.Close()
	var out []CommercePost

	for rows.Next() {
		var cp CommercePost
		err := rows.Scan(
			&cp.ID,
			&cp.UserID,
			&cp.LTKID,
			&cp.Permalink,
			&cp.Caption,
			&cp.PublishedAt,
			&cp.Clicks,
			&cp.Revenue,
			&cp.ItemsSold,
			&cp.ConversionRate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commerce post: %w", err)
		}

		out = append(out, cp)
	}

	return out, rows.Err()
}
