package notification

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/repositories/cache"
	"quickloan/internal/repositories/memory"
)

type fixture struct {
	repos *repositories.Repositories
	svc   Service
	mr    *miniredis.Miniredis
	cache *cache.CacheService
}

func newFixture(t *testing.T, batchSize int) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cacheSvc := cache.NewCacheService(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	repos := memory.NewStore().Repositories()
	return &fixture{
		repos: repos,
		svc:   NewService(repos.Notifications, repos.Users, cacheSvc, Config{BatchSize: batchSize}),
		mr:    mr,
		cache: cacheSvc,
	}
}

func (f *fixture) user(t *testing.T, email string, active bool) uint {
	u := &models.User{Email: email, Password: "x", IsActive: active}
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return u.ID
}

func TestNotify_AndUnreadCountCache(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	uid := f.user(t, "a@x.co", true)

	require.NoError(t, f.svc.Notify(ctx, uid, models.NotificationSystem, "Hello", "World"))

	count, err := f.svc.UnreadCount(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.True(t, f.mr.Exists(f.cache.UnreadCountKey(uid)))

	require.NoError(t, f.svc.Notify(ctx, uid, models.NotificationSystem, "Again", "World"))
	assert.False(t, f.mr.Exists(f.cache.UnreadCountKey(uid)), "write must invalidate the counter")

	count, err = f.svc.UnreadCount(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestList_NewestFirstAndPaginated(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	uid := f.user(t, "a@x.co", true)

	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, f.svc.Notify(ctx, uid, models.NotificationSystem, title, "m"))
	}

	items, total, err := f.svc.List(ctx, uid, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, "three", items[0].Title)

	items, _, err = f.svc.List(ctx, uid, 2, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "one", items[0].Title)
}

func TestMarkRead_OwnershipEnforced(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	owner := f.user(t, "owner@x.co", true)
	other := f.user(t, "other@x.co", true)

	require.NoError(t, f.svc.Notify(ctx, owner, models.NotificationSystem, "t", "m"))
	items, _, err := f.svc.List(ctx, owner, 1, 10)
	require.NoError(t, err)
	id := items[0].ID

	err = f.svc.MarkRead(ctx, other, id)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	require.NoError(t, f.svc.MarkRead(ctx, owner, id))
	count, err := f.svc.UnreadCount(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	uid := f.user(t, "a@x.co", true)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.Notify(ctx, uid, models.NotificationSystem, "t", "m"))
	}

	n, err := f.svc.MarkAllRead(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	unread, err := f.svc.Unread(ctx, uid, 5)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestBroadcast_ActiveUsersInBatches(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	active := []uint{
		f.user(t, "a@x.co", true),
		f.user(t, "b@x.co", true),
		f.user(t, "c@x.co", true),
	}
	inactive := f.user(t, "d@x.co", false)

	sent, err := f.svc.Broadcast(ctx, "Maintenance", "Back at noon")
	require.NoError(t, err)
	assert.Equal(t, int64(3), sent)

	for _, uid := range active {
		count, err := f.svc.UnreadCount(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	}
	count, err := f.svc.UnreadCount(ctx, inactive)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBroadcast_RequiresContent(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.svc.Broadcast(context.Background(), " ", "x")
	assert.ErrorIs(t, err, ErrEmptyBroadcast)
}

func TestRemindOverdue_OncePerDay(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	uid := f.user(t, "a@x.co", true)
	now := time.Now()

	sent, err := f.svc.RemindOverdue(ctx, uid, "Mobile Loan", 2, now)
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = f.svc.RemindOverdue(ctx, uid, "Mobile Loan", 2, now)
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = f.svc.RemindOverdue(ctx, uid, "Mobile Loan", 0, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, sent)
}
