package attribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
)

// implements Store and Reader on PostgreSQL
// inputs come from the sales and posts repositories; the replace runs in one transaction
type PostgresStore struct {
	db    *pgxpool.Pool
	sales *sales.Repository
	posts *posts.Repository
}

func NewPostgresStore(db *pgxpool.Pool, salesRepo *sales.Repository, postsRepo *posts.Repository) *PostgresStore {
	return &PostgresStore{
		db:    db,
		sales: salesRepo,
		posts: postsRepo,
	}
}

// creates the attribution tables and rollup columns if they don't exist
func (s *PostgresStore) Initialize(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTablesSQL); err != nil {
		return fmt.Errorf("failed to initialize attribution schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) FetchSales(ctx context.Context, userID string) ([]sales.Sale, error) {
	return s.sales.ListByUser(ctx, userID)
}

func (s *PostgresStore) FetchContentPosts(ctx context.Context, userID string) ([]posts.Post, error) {
	return s.posts.ListByUser(ctx, userID)
}

func (s *PostgresStore) ReplaceAttributions(ctx context.Context, plan Plan, run Run) (Applied, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Applied{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, queryDeleteAttributions, plan.UserID); err != nil {
		return Applied{}, fmt.Errorf("failed to delete attributions: %w", err)
	}

	if err := insertAttributions(ctx, tx, plan); err != nil {
		return Applied{}, err
	}

	rollupIDs := make([]string, len(plan.Rollups))
	for i, r := range plan.Rollups {
		rollupIDs[i] = r.PostID
	}

	tag, err := tx.Exec(ctx, queryZeroStaleRollups, plan.UserID, rollupIDs)
	if err != nil {
		return Applied{}, fmt.Errorf("failed to zero stale rollups: %w", err)
	}

	applied := Applied{PostsZeroed: int(tag.RowsAffected())}

	updated, err := updateRollups(ctx, tx, plan)
	if err != nil {
		return Applied{}, err
	}
	applied.PostsUpdated = updated

	run.FinishedAt = time.Now()

	_, err = tx.Exec(ctx, queryInsertRun,
		run.ID,
		run.UserID,
		run.Status,
		run.AttributionsCreated,
		applied.PostsUpdated,
		applied.PostsZeroed,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return Applied{}, fmt.Errorf("failed to record run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Applied{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return applied, nil
}

func insertAttributions(ctx context.Context, tx pgx.Tx, plan Plan) error {
	if len(plan.Attributions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, a := range plan.Attributions {
		batch.Queue(queryInsertAttribution,
			plan.UserID,
			a.SaleID,
			a.PostID,
			a.Confidence,
			string(a.Method),
			plan.RunID,
		)
	}

	br := tx.SendBatch(ctx, batch)

	for i := range plan.Attributions {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck,gosec // already failing
			return fmt.Errorf("failed to insert attribution %d: %w", i, err)
		}
	}

	// must close batch results before the next statement, otherwise the connection is still busy
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close attribution batch: %w", err)
	}

	return nil
}

func updateRollups(ctx context.Context, tx pgx.Tx, plan Plan) (int, error) {
	if len(plan.Rollups) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, r := range plan.Rollups {
		batch.Queue(queryUpdatePostRollup, r.PostID, plan.UserID, r.Revenue, r.Sales)
	}

	br := tx.SendBatch(ctx, batch)
	updated := 0

	for _, r := range plan.Rollups {
		tag, err := br.Exec()
		if err != nil {
			br.Close() //nolint:errcheck,gosec // already failing
			return 0, fmt.Errorf("failed to update rollup for post %s: %w", r.PostID, err)
		}
		updated += int(tag.RowsAffected())
	}

	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close rollup batch: %w", err)
	}

	return updated, nil
}

func (s *PostgresStore) ListAttributions(ctx context.Context, userID string, limit, offset int) ([]AttributionDetail, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, queryCountAttributions, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attributions: %w", err)
	}

	rows, err := s.db.Query(ctx, queryListAttributions, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attributions: %w", err)
	}

	defer rows.Close()
	details := []AttributionDetail{}

	for rows.Next() {
		var (
			d           AttributionDetail
			method      string
			saleDate    *time.Time
			publishedAt *time.Time
		)

		err := rows.Scan(
			&d.SaleID,
			&d.PostID,
			&d.Confidence,
			&method,
			&d.ProductName,
			&d.Amount,
			&saleDate,
			&d.Platform,
			&d.PostCaption,
			&publishedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attribution: %w", err)
		}

		d.Method = Method(method)
		if saleDate != nil {
			d.SaleDate = *saleDate
		}
		if publishedAt != nil {
			d.PostPublishedAt = *publishedAt
		}

		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return details, total, nil
}

func (s *PostgresStore) LatestRun(ctx context.Context, userID string) (*Run, error) {
	var run Run

	err := s.db.QueryRow(ctx, queryLatestRun, userID).Scan(
		&run.ID,
		&run.UserID,
		&run.Status,
		&run.AttributionsCreated,
		&run.PostsUpdated,
		&run.PostsZeroed,
		&run.StartedAt,
		&run.FinishedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return &run, nil
}

// returns every user with sales or with attributions left from an earlier run
func (s *PostgresStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, queryListUserIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	defer rows.Close()
	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
