package attribution

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/creatorlens/server/creatorlens/posts"
	"codeberg.org/creatorlens/server/creatorlens/sales"
	"codeberg.org/creatorlens/server/internal/attribution"
	"codeberg.org/creatorlens/server/internal/auth"
	"codeberg.org/creatorlens/server/internal/runlock"
)

const testSecret = "test-secret-key-for-testing"

type fixture struct {
	router *gin.Engine
	store  *attribution.MemoryStore
	token  string
}

func newFixture(t *testing.T, runner Runner) *fixture {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	gin.SetMode(gin.TestMode)

	store := attribution.NewMemoryStore()
	if runner == nil {
		runner = attribution.New(store, runlock.NewMemoryLocker())
	}

	router := gin.New()
	passthrough := func(c *gin.Context) { c.Next() }
	RegisterRoutes(router.Group("/api/v1"), runner, store, passthrough)

	token, err := auth.GenerateJWT("user-1", "creator@example.com")
	require.NoError(t, err)

	return &fixture{router: router, store: store, token: token}
}

func (f *fixture) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+f.token)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func seed(store *attribution.MemoryStore) {
	saleDay := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	store.PutSales("user-1", sales.Sale{ID: "sale-1", ProductName: "Align Leggings", Amount: 50, SaleDate: saleDay, Platform: "LTK"})
	store.PutPosts("user-1", posts.Post{ID: "post-1", Caption: "Loving these Align leggings today!", PublishedAt: saleDay.AddDate(0, 0, -5)})
}

func TestRunHandler(t *testing.T) {
	f := newFixture(t, nil)
	seed(f.store)

	w := f.do(http.MethodPost, "/api/v1/attribution/run")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result attribution.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.AttributionsCreated)
	assert.Equal(t, 1, result.PostsUpdated)
	assert.NotEmpty(t, result.RunID)
}

func TestRunHandler_RequiresAuth(t *testing.T) {
	f := newFixture(t, nil)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/attribution/run", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type busyRunner struct{}

func (busyRunner) RunAttribution(context.Context, string) (*attribution.Result, error) {
	return nil, attribution.ErrLockUnavailable
}

func TestRunHandler_LockHeld(t *testing.T) {
	f := newFixture(t, busyRunner{})

	w := f.do(http.MethodPost, "/api/v1/attribution/run")

	assert.Equal(t, http.StatusConflict, w.Code)
}

type downLocker struct{}

func (downLocker) Acquire(context.Context, string) (func(), error) {
	return nil, errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func TestRunHandler_LockBackendDown(t *testing.T) {
	f := newFixture(t, nil)
	f.router = gin.New()
	RegisterRoutes(f.router.Group("/api/v1"), attribution.New(f.store, downLocker{}), f.store, func(c *gin.Context) { c.Next() })

	w := f.do(http.MethodPost, "/api/v1/attribution/run")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListHandler(t *testing.T) {
	f := newFixture(t, nil)
	seed(f.store)

	w := f.do(http.MethodGet, "/api/v1/attribution")
	require.Equal(t, http.StatusOK, w.Code)

	var empty ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &empty))
	assert.Empty(t, empty.Attributions)
	assert.Equal(t, 0, empty.Pagination.Total)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/v1/attribution/run").Code)

	w = f.do(http.MethodGet, "/api/v1/attribution?limit=10")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Attributions, 1)
	assert.Equal(t, "sale-1", resp.Attributions[0].SaleID)
	assert.Equal(t, attribution.MethodProductMatch, resp.Attributions[0].Method)
	assert.Equal(t, 10, resp.Pagination.Limit)
	assert.False(t, resp.Pagination.HasMore)
}

func TestLatestRunHandler(t *testing.T) {
	f := newFixture(t, nil)
	seed(f.store)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/v1/attribution/runs/latest").Code)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/v1/attribution/run").Code)

	w := f.do(http.MethodGet, "/api/v1/attribution/runs/latest")
	require.Equal(t, http.StatusOK, w.Code)

	var run attribution.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, attribution.RunStatusCompleted, run.Status)
	assert.Equal(t, 1, run.AttributionsCreated)
}
