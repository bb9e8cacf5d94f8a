package attribution

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/creatorlens/server/creatorlens/sales"
)

func TestMemoryStore_ListAttributions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.PutPosts(testUser, testPost("p1", "align leggings", daysBefore(1)))
	store.PutSales(testUser,
		sales.Sale{ID: "s1", ProductName: "Align Leggings", Amount: 10, SaleDate: saleDay, Platform: "LTK"},
		sales.Sale{ID: "s2", ProductName: "Align Leggings", Amount: 20, SaleDate: saleDay.Add(time.Hour), Platform: "LTK"},
		sales.Sale{ID: "s3", ProductName: "Align Leggings", Amount: 30, SaleDate: saleDay.Add(2 * time.Hour), Platform: "LTK"},
	)

	_, err := newTestService(store).RunAttribution(ctx, testUser)
	require.NoError(t, err)

	page, total, err := store.ListAttributions(ctx, testUser, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "s3", page[0].SaleID, "newest sale first")
	assert.Equal(t, "align leggings", page[0].PostCaption)
	assert.Equal(t, 30.0, page[0].Amount)

	page, _, err = store.ListAttributions(ctx, testUser, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "s1", page[0].SaleID)

	page, _, err = store.ListAttributions(ctx, testUser, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMemoryStore_LatestRunMissing(t *testing.T) {
	_, err := NewMemoryStore().LatestRun(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestMemoryStore_ReplaceHonorsCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ReplaceAttributions(ctx, Plan{UserID: testUser, Attributions: []Attribution{{SaleID: "s1", PostID: "p1"}}}, Run{})
	require.Error(t, err)
	assert.Empty(t, store.Attributions(testUser))
}
