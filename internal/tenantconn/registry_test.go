package tenantconn_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/tenantconn"
)

func newTestHandle(t *testing.T) *gorm.DB {
	t.Helper()

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db
}

// fakeClock hands out strictly increasing instants so LRU order in the
// registry is deterministic.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func TestRegistryGet(t *testing.T) {
	t.Run("rejects empty tenant id", func(t *testing.T) {
		reg := tenantconn.NewRegistry(func(string) (*gorm.DB, error) {
			t.Fatal("opener must not run for empty tenant id")
			return nil, nil
		}, zap.NewNop())

		_, err := reg.Get("")

		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeConfiguration, appErr.Code)
	})

	t.Run("opens once and caches the handle", func(t *testing.T) {
		opens := 0
		reg := tenantconn.NewRegistry(func(tenantID string) (*gorm.DB, error) {
			opens++
			return newTestHandle(t), nil
		}, zap.NewNop())

		first, err := reg.Get("tenant-a")
		require.NoError(t, err)
		second, err := reg.Get("tenant-a")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, opens)
	})

	t.Run("wraps opener failures as configuration errors", func(t *testing.T) {
		reg := tenantconn.NewRegistry(func(string) (*gorm.DB, error) {
			return nil, errors.New("dial tcp: connection refused")
		}, zap.NewNop())

		_, err := reg.Get("tenant-a")

		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeConfiguration, appErr.Code)
	})

	t.Run("does not cache a handle when afterOpen fails", func(t *testing.T) {
		opens := 0
		reg := tenantconn.NewRegistry(
			func(string) (*gorm.DB, error) {
				opens++
				return newTestHandle(t), nil
			},
			zap.NewNop(),
			tenantconn.WithAfterOpen(func(tenantID string, db *gorm.DB) error {
				return errors.New("migration blew up")
			}),
		)

		_, err := reg.Get("tenant-a")
		require.Error(t, err)

		assert.Equal(t, 0, reg.Len())

		_, err = reg.Get("tenant-a")
		require.Error(t, err)
		assert.Equal(t, 2, opens, "a failed open must be retried, not cached")
	})
}

func TestRegistryEviction(t *testing.T) {
	t.Run("evicts the least recently used tenant beyond capacity", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		var evicted []string

		reg := tenantconn.NewRegistry(
			func(string) (*gorm.DB, error) { return newTestHandle(t), nil },
			zap.NewNop(),
			tenantconn.WithCapacity(2),
			tenantconn.WithClock(clock.Now),
			tenantconn.WithEvictHook(func(tenantID string) {
				evicted = append(evicted, tenantID)
			}),
		)

		_, err := reg.Get("tenant-a")
		require.NoError(t, err)
		_, err = reg.Get("tenant-b")
		require.NoError(t, err)

		// Touch tenant-a so tenant-b becomes the coldest entry.
		_, err = reg.Get("tenant-a")
		require.NoError(t, err)

		_, err = reg.Get("tenant-c")
		require.NoError(t, err)

		assert.Equal(t, []string{"tenant-b"}, evicted)
		assert.Equal(t, 2, reg.Len())
	})

	t.Run("never evicts the tenant that triggered the insert", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		var evicted []string

		reg := tenantconn.NewRegistry(
			func(string) (*gorm.DB, error) { return newTestHandle(t), nil },
			zap.NewNop(),
			tenantconn.WithCapacity(1),
			tenantconn.WithClock(clock.Now),
			tenantconn.WithEvictHook(func(tenantID string) {
				evicted = append(evicted, tenantID)
			}),
		)

		_, err := reg.Get("tenant-a")
		require.NoError(t, err)
		_, err = reg.Get("tenant-b")
		require.NoError(t, err)

		assert.Equal(t, []string{"tenant-a"}, evicted)
		assert.Equal(t, 1, reg.Len())

		// tenant-b must still be served from cache.
		opensBefore := len(evicted)
		_, err = reg.Get("tenant-b")
		require.NoError(t, err)
		assert.Len(t, evicted, opensBefore)
	})

	t.Run("evict forgets one tenant and reopens on demand", func(t *testing.T) {
		opens := 0
		var evicted []string
		reg := tenantconn.NewRegistry(
			func(string) (*gorm.DB, error) {
				opens++
				return newTestHandle(t), nil
			},
			zap.NewNop(),
			tenantconn.WithEvictHook(func(tenantID string) {
				evicted = append(evicted, tenantID)
			}),
		)

		_, err := reg.Get("tenant-a")
		require.NoError(t, err)

		reg.Evict("tenant-a")
		assert.Equal(t, []string{"tenant-a"}, evicted)
		assert.Equal(t, 0, reg.Len())

		// Evicting an unknown tenant is a no-op.
		reg.Evict("tenant-z")
		assert.Len(t, evicted, 1)

		_, err = reg.Get("tenant-a")
		require.NoError(t, err)
		assert.Equal(t, 2, opens)
	})

	t.Run("clear releases every handle but keeps the registry usable", func(t *testing.T) {
		var evicted []string
		reg := tenantconn.NewRegistry(
			func(string) (*gorm.DB, error) { return newTestHandle(t), nil },
			zap.NewNop(),
			tenantconn.WithEvictHook(func(tenantID string) {
				evicted = append(evicted, tenantID)
			}),
		)

		_, err := reg.Get("tenant-a")
		require.NoError(t, err)
		_, err = reg.Get("tenant-b")
		require.NoError(t, err)

		reg.Clear()
		assert.Equal(t, 0, reg.Len())
		assert.Len(t, evicted, 2)

		_, err = reg.Get("tenant-a")
		require.NoError(t, err)
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("close releases every handle and notifies the hook", func(t *testing.T) {
		var evicted []string
		reg := tenantconn.NewRegistry(
			func(string) (*gorm.DB, error) { return newTestHandle(t), nil },
			zap.NewNop(),
			tenantconn.WithEvictHook(func(tenantID string) {
				evicted = append(evicted, tenantID)
			}),
		)

		for i := 0; i < 3; i++ {
			_, err := reg.Get(fmt.Sprintf("tenant-%d", i))
			require.NoError(t, err)
		}

		reg.Close()

		assert.Equal(t, 0, reg.Len())
		assert.Len(t, evicted, 3)
	})
}
