package posts

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// returns every post for the user, newest first
// rows without posted_at come back with a zero PublishedAt
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Post, error) {
	rows, err := r.db.Query(ctx, queryListByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}

	return collectPosts(rows)
}

// returns the user's posts published in [start, end)
func (r *Repository) ListPublishedBetween(ctx context.Context, userID string, start, end time.Time) ([]Post, error) {
	rows, err := r.db.Query(ctx, queryListPublishedBetween, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts in range: %w", err)
	}

	return collectPosts(rows)
}

func collectPosts(rows pgx.Rows) ([]Post, error) {
	defer rows.Close()
	var out []Post

	for rows.Next() {
		var (
			p           Post
			publishedAt *time.Time
		)

		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Platform,
			&p.ExternalPostID,
			&p.PostURL,
			&p.PostType,
			&p.Caption,
			&publishedAt,
			&p.Likes,
			&p.Comments,
			&p.Shares,
			&p.Saves,
			&p.Views,
			&p.Reach,
			&p.EngagementRate,
			&p.AttributedRevenue,
			&p.AttributedSales,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		if publishedAt != nil {
			p.PublishedAt = *publishedAt
		}

		out = append(out, p)
	}

	return out, rows.Err()
}
