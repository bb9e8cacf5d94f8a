package sales

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

// a single affiliate sale record, immutable once recorded
type Sale struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProductName string    `json:"product_name"`
	Amount      float64   `json:"amount"`
	SaleDate    time.Time `json:"sale_date"`
	Platform    string    `json:"platform"`
}

// reports whether the row carries the fields attribution needs
func (s Sale) Valid() bool {
	return s.ID != "" && !s.SaleDate.IsZero()
}
