package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// returns every sale recorded for the user, newest first
// rows without a sale_date come back with a zero SaleDate
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Sale, error) {
	rows, err := r.db.Query(ctx, queryListByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}

	defer rows.Close()
	var out []Sale

	for rows.Next() {
		var (
			s        Sale
			saleDate *time.Time
		)

		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.ProductName,
			&s.Amount,
			&saleDate,
			&s.Platform,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}

		if saleDate != nil {
			s.SaleDate = *saleDate
		}

		out = append(out, s)
	}

	return out, rows.Err()
}
