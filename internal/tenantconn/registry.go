package tenantconn

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
)

// DefaultCapacity bounds how many tenant database handles stay open at
// once. Fifty tenants covers the usual working set; the least recently
// used handle is closed when a new tenant pushes past the limit.
const DefaultCapacity = 50

// Opener creates the database handle for one tenant.
type Opener func(tenantID string) (*gorm.DB, error)

// Source is the consumer-side view of the registry. Services depend on
// this so tests can swap in a fixed handle.
type Source interface {
	Get(tenantID string) (*gorm.DB, error)
}

type entry struct {
	db       *gorm.DB
	lastUsed time.Time
}

// Registry hands out per-tenant *gorm.DB handles, opening them lazily
// and keeping at most capacity handles alive (LRU eviction). Safe for
// concurrent use; concurrent first requests for the same tenant share a
// single open via singleflight.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	capacity int
	opener   Opener
	now      func() time.Time
	group    singleflight.Group
	logger   *zap.Logger

	afterOpen func(tenantID string, db *gorm.DB) error
	onEvict   func(tenantID string)
}

type RegistryOption func(*Registry)

// WithCapacity overrides the handle limit. Values below one fall back
// to the default.
func WithCapacity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithClock injects the time source, used by tests to steer LRU order.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithAfterOpen runs once per freshly opened handle, before it becomes
// visible to other callers. An error discards the handle.
func WithAfterOpen(fn func(tenantID string, db *gorm.DB) error) RegistryOption {
	return func(r *Registry) { r.afterOpen = fn }
}

// WithEvictHook is invoked after a tenant's handle is evicted or the
// registry is closed, so collaborators can drop per-tenant state.
func WithEvictHook(fn func(tenantID string)) RegistryOption {
	return func(r *Registry) { r.onEvict = fn }
}

func NewRegistry(opener Opener, logger *zap.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		entries:  make(map[string]*entry),
		capacity: DefaultCapacity,
		opener:   opener,
		now:      time.Now,
		logger:   logger.Named("tenantconn.registry"),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Get returns the handle for tenantID, opening it on first use.
func (r *Registry) Get(tenantID string) (*gorm.DB, error) {
	if tenantID == "" {
		return nil, apperror.New(
			apperror.CodeConfiguration,
			"Tenant id is required to resolve a database connection",
			http.StatusInternalServerError,
		)
	}

	r.mu.Lock()
	if e, ok := r.entries[tenantID]; ok {
		e.lastUsed = r.now()
		db := e.db
		r.mu.Unlock()
		return db, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(tenantID, func() (any, error) {
		return r.open(tenantID)
	})
	if err != nil {
		return nil, err
	}

	return v.(*gorm.DB), nil
}

func (r *Registry) open(tenantID string) (*gorm.DB, error) {
	// A concurrent caller may have won the race between the cache miss
	// and the singleflight slot.
	r.mu.Lock()
	if e, ok := r.entries[tenantID]; ok {
		e.lastUsed = r.now()
		db := e.db
		r.mu.Unlock()
		return db, nil
	}
	r.mu.Unlock()

	db, err := r.opener(tenantID)
	if err != nil {
		r.logger.Error("failed to open tenant database",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		return nil, apperror.Wrap(
			err,
			apperror.CodeConfiguration,
			"Failed to connect to tenant database",
			http.StatusInternalServerError,
		)
	}

	if r.afterOpen != nil {
		if err := r.afterOpen(tenantID, db); err != nil {
			closeHandle(db)
			return nil, err
		}
	}

	r.mu.Lock()
	r.entries[tenantID] = &entry{db: db, lastUsed: r.now()}
	evicted := r.evictLocked(tenantID)
	r.mu.Unlock()

	for id, h := range evicted {
		r.logger.Info("evicted tenant database handle",
			zap.String("tenant_id", id),
			zap.Int("capacity", r.capacity),
		)
		closeHandle(h)
		if r.onEvict != nil {
			r.onEvict(id)
		}
	}

	return db, nil
}

// evictLocked drops least-recently-used entries until the registry is
// back within capacity. The tenant that triggered the insert is never a
// candidate, even when it is the coldest entry.
func (r *Registry) evictLocked(keep string) map[string]*gorm.DB {
	evicted := make(map[string]*gorm.DB)

	for len(r.entries) > r.capacity {
		oldestID := ""
		var oldest time.Time
		for id, e := range r.entries {
			if id == keep {
				continue
			}
			if oldestID == "" || e.lastUsed.Before(oldest) {
				oldestID = id
				oldest = e.lastUsed
			}
		}
		if oldestID == "" {
			break
		}

		evicted[oldestID] = r.entries[oldestID].db
		delete(r.entries, oldestID)
	}

	return evicted
}

// Evict closes and forgets one tenant's handle, if cached. A later Get
// reopens it.
func (r *Registry) Evict(tenantID string) {
	r.mu.Lock()
	e, ok := r.entries[tenantID]
	if ok {
		delete(r.entries, tenantID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	closeHandle(e.db)
	if r.onEvict != nil {
		r.onEvict(tenantID)
	}
	r.logger.Info("evicted tenant database handle",
		zap.String("tenant_id", tenantID),
	)
}

// Clear releases every cached handle. The registry stays usable and
// reopens handles on demand.
func (r *Registry) Clear() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for id, e := range entries {
		closeHandle(e.db)
		if r.onEvict != nil {
			r.onEvict(id)
		}
	}
}

// Len reports how many handles are currently cached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close releases every cached handle on shutdown.
func (r *Registry) Close() {
	r.Clear()
}

func closeHandle(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
