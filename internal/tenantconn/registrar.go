package tenantconn

import (
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entity names one table the registrar manages. Critical entities are
// re-migrated on every pass because the leave engine cannot run without
// their latest shape; the rest are migrated once per tenant.
type Entity struct {
	Name     string
	Model    any
	Critical bool
}

type MigrationStatus string

const (
	StatusRegistered MigrationStatus = "registered"
	StatusSkipped    MigrationStatus = "skipped"
	StatusFailed     MigrationStatus = "failed"
)

// MigrationResult records the outcome for one entity. Failures never
// abort the pass; callers inspect the slice.
type MigrationResult struct {
	Entity string
	Status MigrationStatus
	Err    error
}

// SchemaRegistrar keeps every tenant database's schema aligned with the
// registered entity set. It remembers which tenants have had a full
// pass so repeat calls only touch critical entities.
type SchemaRegistrar struct {
	mu       sync.Mutex
	migrated map[string]bool

	entities []Entity
	logger   *zap.Logger
	migrate  func(db *gorm.DB, model any) error
}

func NewSchemaRegistrar(entities []Entity, logger *zap.Logger) *SchemaRegistrar {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SchemaRegistrar{
		migrated: make(map[string]bool),
		entities: entities,
		logger:   logger.Named("tenantconn.registrar"),
		migrate: func(db *gorm.DB, model any) error {
			return db.AutoMigrate(model)
		},
	}
}

// EnsureSchema migrates the tenant database. Each entity is migrated
// independently; one failing table does not block the others.
// forceRefresh runs a full pass even for a tenant already registered,
// so a caller can pick up hot schema edits without evicting the handle.
func (s *SchemaRegistrar) EnsureSchema(tenantID string, db *gorm.DB, forceRefresh bool) []MigrationResult {
	s.mu.Lock()
	fullPass := forceRefresh || !s.migrated[tenantID]
	s.mu.Unlock()

	results := make([]MigrationResult, 0, len(s.entities))
	failed := false

	for _, e := range s.entities {
		if !fullPass && !e.Critical {
			results = append(results, MigrationResult{Entity: e.Name, Status: StatusSkipped})
			continue
		}

		if err := s.migrate(db, e.Model); err != nil {
			failed = true
			s.logger.Error("entity migration failed",
				zap.String("tenant_id", tenantID),
				zap.String("entity", e.Name),
				zap.Error(err),
			)
			results = append(results, MigrationResult{Entity: e.Name, Status: StatusFailed, Err: err})
			continue
		}

		results = append(results, MigrationResult{Entity: e.Name, Status: StatusRegistered})
	}

	if fullPass && !failed {
		s.mu.Lock()
		s.migrated[tenantID] = true
		s.mu.Unlock()
		s.logger.Info("tenant schema registered",
			zap.String("tenant_id", tenantID),
			zap.Int("entities", len(s.entities)),
		)
	}

	return results
}

// Forget clears the full-pass marker so the next EnsureSchema call
// migrates everything again. Wired to the registry's evict hook.
func (s *SchemaRegistrar) Forget(tenantID string) {
	s.mu.Lock()
	delete(s.migrated, tenantID)
	s.mu.Unlock()
}
