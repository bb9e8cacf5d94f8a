package attribution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
	"codeberg.org/creatorlens/server/internal/runlock"
)

const testUser = "user-1"

func newTestService(store Store) *Service {
	return New(store, runlock.NewMemoryLocker(), WithApplyTimeout(5*time.Second))
}

func seedScenarioA(store *MemoryStore) {
	store.PutSales(testUser, testSale())
	store.PutPosts(testUser,
		testPost("post-1", "Loving these Align leggings today!", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
		testPost("post-2", "Sunday brunch vibes", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	)
}

func postByID(t *testing.T, store *MemoryStore, id string) posts.Post {
	t.Helper()

	list, err := store.FetchContentPosts(context.Background(), testUser)
	require.NoError(t, err)

	for _, p := range list {
		if p.ID == id {
			return p
		}
	}

	t.Fatalf("post %s not found", id)
	return posts.Post{}
}

func TestRunAttribution_ScenarioA(t *testing.T) {
	store := NewMemoryStore()
	seedScenarioA(store)

	result, err := newTestService(store).RunAttribution(context.Background(), testUser)

	require.NoError(t, err)
	assert.Equal(t, 1, result.AttributionsCreated)
	assert.Equal(t, 1, result.PostsUpdated)
	assert.NotEmpty(t, result.RunID)

	post := postByID(t, store, "post-1")
	assert.Equal(t, 50.0, post.AttributedRevenue)
	assert.Equal(t, 1, post.AttributedSales)

	untouched := postByID(t, store, "post-2")
	assert.Zero(t, untouched.AttributedRevenue)
	assert.Zero(t, untouched.AttributedSales)

	run, err := store.LatestRun(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, RunStatusCompleted, run.Status)
}

func TestRunAttribution_Idempotent(t *testing.T) {
	store := NewMemoryStore()
	seedScenarioA(store)
	store.PutSales(testUser,
		sales.Sale{ID: "sale-2", ProductName: "Brunch Set", Amount: 12, SaleDate: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), Platform: "LTK"},
	)

	svc := newTestService(store)

	_, err := svc.RunAttribution(context.Background(), testUser)
	require.NoError(t, err)
	first := store.Attributions(testUser)
	firstPosts, _ := store.FetchContentPosts(context.Background(), testUser)

	_, err = svc.RunAttribution(context.Background(), testUser)
	require.NoError(t, err)
	second := store.Attributions(testUser)
	secondPosts, _ := store.FetchContentPosts(context.Background(), testUser)

	assert.Equal(t, first, second)
	assert.Equal(t, firstPosts, secondPosts)
	assert.Len(t, second, 2)
}

func TestRunAttribution_ZeroesPostsThatLostAttributions(t *testing.T) {
	store := NewMemoryStore()
	seedScenarioA(store)
	svc := newTestService(store)

	_, err := svc.RunAttribution(context.Background(), testUser)
	require.NoError(t, err)
	require.Equal(t, 50.0, postByID(t, store, "post-1").AttributedRevenue)

	// the only sale is refunded and removed
	store.DeleteSale(testUser, "sale-1")

	result, err := svc.RunAttribution(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, 0, result.AttributionsCreated)
	assert.Equal(t, 1, result.PostsZeroed)
	assert.Empty(t, store.Attributions(testUser))

	post := postByID(t, store, "post-1")
	assert.Zero(t, post.AttributedRevenue)
	assert.Zero(t, post.AttributedSales)
}

func TestRunAttribution_RollupConsistency(t *testing.T) {
	store := NewMemoryStore()
	store.PutPosts(testUser,
		testPost("p-align", "align restock", daysBefore(2)),
		testPost("p-shoes", "running shoes", daysBefore(1)),
		testPost("p-none", "coffee", daysBefore(30)),
	)
	store.PutSales(testUser,
		sales.Sale{ID: "s1", ProductName: "Align Leggings", Amount: 40, SaleDate: saleDay, Platform: "LTK"},
		sales.Sale{ID: "s2", ProductName: "Align Bra", Amount: 25, SaleDate: saleDay, Platform: "LTK"},
		sales.Sale{ID: "s3", ProductName: "Running Shoes", Amount: 99.99, SaleDate: saleDay, Platform: "LTK"},
		sales.Sale{ID: "s4", ProductName: "Gift Card", Amount: 15, SaleDate: saleDay.AddDate(1, 0, 0), Platform: "LTK"},
	)

	_, err := newTestService(store).RunAttribution(context.Background(), testUser)
	require.NoError(t, err)

	saleList, _ := store.FetchSales(context.Background(), testUser)
	amounts := amountsOf(saleList)
	attributions := store.Attributions(testUser)

	postList, _ := store.FetchContentPosts(context.Background(), testUser)
	for _, p := range postList {
		var (
			revenue float64
			count   int
		)
		for _, a := range attributions {
			if a.PostID == p.ID {
				revenue += amounts[a.SaleID]
				count++
			}
		}
		assert.InDelta(t, revenue, p.AttributedRevenue, 1e-9, "post %s", p.ID)
		assert.Equal(t, count, p.AttributedSales, "post %s", p.ID)
	}

	// causality holds for every link
	byID := map[string]posts.Post{}
	for _, p := range postList {
		byID[p.ID] = p
	}
	for _, a := range attributions {
		for _, s := range saleList {
			if s.ID == a.SaleID {
				assert.True(t, byID[a.PostID].PublishedAt.Before(s.SaleDate))
			}
		}
	}
}

type failingStore struct {
	*MemoryStore
	fetchErr   error
	replaceErr error
}

func (s *failingStore) FetchSales(ctx context.Context, userID string) ([]sales.Sale, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.MemoryStore.FetchSales(ctx, userID)
}

func (s *failingStore) ReplaceAttributions(ctx context.Context, plan Plan, run Run) (Applied, error) {
	if s.replaceErr != nil {
		return Applied{}, s.replaceErr
	}
	return s.MemoryStore.ReplaceAttributions(ctx, plan, run)
}

func TestRunAttribution_FetchErrorWritesNothing(t *testing.T) {
	mem := NewMemoryStore()
	seedScenarioA(mem)
	store := &failingStore{MemoryStore: mem, fetchErr: errors.New("connection refused")}

	_, err := newTestService(store).RunAttribution(context.Background(), testUser)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "sales", fetchErr.Op)
	assert.Empty(t, mem.Attributions(testUser))

	_, err = mem.LatestRun(context.Background(), testUser)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunAttribution_PersistErrorKeepsPreviousState(t *testing.T) {
	mem := NewMemoryStore()
	seedScenarioA(mem)
	store := &failingStore{MemoryStore: mem}
	svc := newTestService(store)

	_, err := svc.RunAttribution(context.Background(), testUser)
	require.NoError(t, err)
	before := mem.Attributions(testUser)

	store.replaceErr = errors.New("deadlock detected")
	mem.DeleteSale(testUser, "sale-1")

	_, err = svc.RunAttribution(context.Background(), testUser)

	var persistErr *PersistError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, before, mem.Attributions(testUser))
	assert.Equal(t, 50.0, postByID(t, mem, "post-1").AttributedRevenue)
}

func TestRunAttribution_CancelledBeforeApply(t *testing.T) {
	store := NewMemoryStore()
	seedScenarioA(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(store).RunAttribution(ctx, testUser)

	require.Error(t, err)
	assert.Empty(t, store.Attributions(testUser))
	assert.Zero(t, postByID(t, store, "post-1").AttributedRevenue)
}

func TestRunAttribution_LockUnavailable(t *testing.T) {
	store := NewMemoryStore()
	locker := runlock.NewMemoryLocker()
	svc := New(store, locker)

	release, err := locker.Acquire(context.Background(), "attribution:"+testUser)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.RunAttribution(ctx, testUser)
	assert.ErrorIs(t, err, ErrLockUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunAttribution_ConcurrentRunsSerialize(t *testing.T) {
	store := NewMemoryStore()
	seedScenarioA(store)
	svc := newTestService(store)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RunAttribution(context.Background(), testUser)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, store.Attributions(testUser), 1)
	post := postByID(t, store, "post-1")
	assert.Equal(t, 50.0, post.AttributedRevenue)
	assert.Equal(t, 1, post.AttributedSales)
}

func TestRunAttribution_NoInputs(t *testing.T) {
	result, err := newTestService(NewMemoryStore()).RunAttribution(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Equal(t, 0, result.AttributionsCreated)
	assert.Equal(t, 0, result.PostsUpdated)
}

type brokenLocker struct{ err error }

func (l brokenLocker) Acquire(context.Context, string) (func(), error) {
	return nil, l.err
}

func TestRunAttribution_LockBackendFailureIsNotContention(t *testing.T) {
	store := NewMemoryStore()
	seedScenarioA(store)

	backendErr := errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	svc := New(store, brokenLocker{err: backendErr})

	_, err := svc.RunAttribution(context.Background(), testUser)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockUnavailable)
	assert.ErrorIs(t, err, backendErr)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "run lock", fetchErr.Op)
	assert.Empty(t, store.Attributions(testUser))
}

func TestRunAttribution_LockWaitCancelledIsContention(t *testing.T) {
	svc := New(NewMemoryStore(), brokenLocker{err: fmt.Errorf("acquire lock: %w", context.Canceled)})

	_, err := svc.RunAttribution(context.Background(), testUser)

	assert.ErrorIs(t, err, ErrLockUnavailable)
}

func TestRunAttribution_RunTimestamps(t *testing.T) {
	store := NewMemoryStore()
	seedScenarioA(store)

	started := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	svc := New(store, runlock.NewMemoryLocker(), WithClock(func() time.Time { return started }))

	before := time.Now()
	result, err := svc.RunAttribution(context.Background(), testUser)
	require.NoError(t, err)

	run, err := store.LatestRun(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, result.RunID, run.ID)
	assert.True(t, run.StartedAt.Equal(started))
	assert.False(t, run.FinishedAt.Before(before), "finished_at is taken when the run is applied")
	assert.Equal(t, 1, run.PostsUpdated)
}
