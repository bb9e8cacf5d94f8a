package attribution

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
)

var ErrRunNotFound = errors.New("attribution run not found")

// implements Store and Reader in memory
// a replace builds the new user state off to the side and swaps it in
// under the write lock, so readers never see a partial run
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*memoryUser
}

type memoryUser struct {
	sales        []sales.Sale
	posts        []posts.Post
	attributions []Attribution
	runs         []Run
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*memoryUser)}
}

func (s *MemoryStore) user(userID string) *memoryUser {
	u, ok := s.users[userID]
	if !ok {
		u = &memoryUser{}
		s.users[userID] = u
	}
	return u
}

// seeds sales for a user (the commerce collaborator's job in production)
func (s *MemoryStore) PutSales(userID string, list ...sales.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	u.sales = append(u.sales, list...)
}

// seeds posts for a user (the content collaborator's job in production)
func (s *MemoryStore) PutPosts(userID string, list ...posts.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	u.posts = append(u.posts, list...)
}

// removes a sale, e.g. a refunded order
func (s *MemoryStore) DeleteSale(userID, saleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	kept := u.sales[:0]
	for _, sale := range u.sales {
		if sale.ID != saleID {
			kept = append(kept, sale)
		}
	}
	u.sales = kept
}

func (s *MemoryStore) FetchSales(_ context.Context, userID string) ([]sales.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return append([]sales.Sale(nil), u.sales...), nil
}

func (s *MemoryStore) FetchContentPosts(_ context.Context, userID string) ([]posts.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return append([]posts.Post(nil), u.posts...), nil
}

// returns a copy of the user's current attribution set
func (s *MemoryStore) Attributions(userID string) []Attribution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	return append([]Attribution(nil), u.attributions...)
}

func (s *MemoryStore) ReplaceAttributions(ctx context.Context, plan Plan, run Run) (Applied, error) {
	if err := ctx.Err(); err != nil {
		return Applied{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(plan.UserID)

	rollups := make(map[string]Rollup, len(plan.Rollups))
	for _, r := range plan.Rollups {
		rollups[r.PostID] = r
	}

	var applied Applied
	nextPosts := make([]posts.Post, len(u.posts))

	for i, p := range u.posts {
		if r, ok := rollups[p.ID]; ok {
			p.AttributedRevenue = r.Revenue
			p.AttributedSales = r.Sales
			applied.PostsUpdated++
		} else if p.HasRollup() {
			p.AttributedRevenue = 0
			p.AttributedSales = 0
			applied.PostsZeroed++
		}
		nextPosts[i] = p
	}

	run.FinishedAt = time.Now()
	run.PostsUpdated = applied.PostsUpdated
	run.PostsZeroed = applied.PostsZeroed

	u.posts = nextPosts
	u.attributions = append([]Attribution(nil), plan.Attributions...)
	u.runs = append(u.runs, run)

	return applied, nil
}

func (s *MemoryStore) ListAttributions(_ context.Context, userID string, limit, offset int) ([]AttributionDetail, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, 0, nil
	}

	salesByID := make(map[string]sales.Sale, len(u.sales))
	for _, sale := range u.sales {
		salesByID[sale.ID] = sale
	}

	postsByID := make(map[string]posts.Post, len(u.posts))
	for _, p := range u.posts {
		postsByID[p.ID] = p
	}

	details := make([]AttributionDetail, 0, len(u.attributions))
	for _, a := range u.attributions {
		sale := salesByID[a.SaleID]
		post := postsByID[a.PostID]

		details = append(details, AttributionDetail{
			Attribution:     a,
			ProductName:     sale.ProductName,
			Amount:          sale.Amount,
			SaleDate:        sale.SaleDate,
			Platform:        sale.Platform,
			PostCaption:     post.Caption,
			PostPublishedAt: post.PublishedAt,
		})
	}

	sort.SliceStable(details, func(i, j int) bool {
		if !details[i].SaleDate.Equal(details[j].SaleDate) {
			return details[i].SaleDate.After(details[j].SaleDate)
		}
		return details[i].SaleID < details[j].SaleID
	})

	total := len(details)
	if offset >= total {
		return []AttributionDetail{}, total, nil
	}

	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	return details[offset:end], total, nil
}

func (s *MemoryStore) LatestRun(_ context.Context, userID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok || len(u.runs) == 0 {
		return nil, ErrRunNotFound
	}

	run := u.runs[len(u.runs)-1]
	return &run, nil
}
