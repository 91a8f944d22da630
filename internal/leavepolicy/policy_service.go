package leavepolicy

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	policyerrors "github.com/RushikJoshi/GT-HRMS-sub004/internal/leavepolicy/errors"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/settings"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/tenantconn"
)

const policyListCacheTTL = 5 * time.Minute

//go:generate mockgen -source=policy_service.go -destination=mock/policy_service_mock.go -package=mock

type Service interface {
	Create(ctx context.Context, tenantID string, req CreatePolicyRequest) (*PolicyWithSync, error)
	Update(ctx context.Context, tenantID, policyID string, req UpdatePolicyRequest) (*PolicyWithSync, error)
	Get(ctx context.Context, tenantID, policyID string) (*LeavePolicy, error)
	List(ctx context.Context, tenantID string) ([]LeavePolicy, error)
	Delete(ctx context.Context, tenantID, policyID string) error
	// SyncPolicy re-runs balance reconciliation for every employee the
	// policy targets, without changing the policy itself.
	SyncPolicy(ctx context.Context, tenantID, policyID string) ([]SyncResult, error)
}

type service struct {
	conns    tenantconn.Source
	policies Repository
	sync     *Synchronizer
	settings settings.Repository
	cache    *redis.Client
	group    singleflight.Group
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(
	conns tenantconn.Source,
	policies Repository,
	sync *Synchronizer,
	settingsRepo settings.Repository,
	cache *redis.Client,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		conns:    conns,
		policies: policies,
		sync:     sync,
		settings: settingsRepo,
		cache:    cache,
		logger:   logger.Named("leavepolicy.service"),
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, tenantID string, req CreatePolicyRequest) (*PolicyWithSync, error) {
	s.logger.Debug("creating leave policy",
		zap.String("tenant_id", tenantID),
		zap.String("name", req.Name),
	)

	applicableType := req.ApplicableType
	if applicableType == "" {
		applicableType = ApplicableAll
	}
	if !validApplicableType(applicableType) {
		return nil, policyerrors.ErrInvalidApplicableType
	}

	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	policy := &LeavePolicy{
		TenantID:       tenantID,
		Name:           req.Name,
		Description:    req.Description,
		ApplicableType: applicableType,
		DepartmentIDs:  req.DepartmentIDs,
		RoleNames:      req.RoleNames,
		EmployeeIDs:    req.EmployeeIDs,
		Rules:          rulesFromPayload(req.Rules),
		IsActive:       true,
	}
	if req.IsActive != nil {
		policy.IsActive = *req.IsActive
	}
	if !policy.HasRules() {
		return nil, policyerrors.ErrPolicyHasNoRules
	}

	cfg, err := s.settings.On(db).Get(ctx, tenantID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load company settings", http.StatusInternalServerError)
	}
	year := CycleYear(s.now(), cfg.LeaveCycleStartMonth)

	var results []SyncResult
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.policies.On(tx).Create(ctx, policy); err != nil {
			return apperror.Wrap(err, apperror.CodePersistence,
				"Failed to create leave policy", http.StatusInternalServerError)
		}

		results, err = s.sync.SyncAllForPolicy(ctx, tx, policy, year, cfg.LeaveCycleStartMonth)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx, tenantID)
	s.logger.Info("leave policy created",
		zap.String("tenant_id", tenantID),
		zap.String("policy_id", policy.ID),
		zap.Int("employees_synced", len(results)),
	)

	return &PolicyWithSync{Policy: policy, SyncResults: results}, nil
}

func (s *service) Update(ctx context.Context, tenantID, policyID string, req UpdatePolicyRequest) (*PolicyWithSync, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policies.On(db).FindByIDAndTenant(ctx, tenantID, policyID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave policy", http.StatusInternalServerError)
	}
	if policy == nil {
		return nil, policyerrors.ErrPolicyNotFound
	}

	if req.Name != nil {
		policy.Name = *req.Name
	}
	if req.Description != nil {
		policy.Description = *req.Description
	}
	if req.ApplicableType != nil {
		if !validApplicableType(*req.ApplicableType) {
			return nil, policyerrors.ErrInvalidApplicableType
		}
		policy.ApplicableType = *req.ApplicableType
	}
	if req.DepartmentIDs != nil {
		policy.DepartmentIDs = req.DepartmentIDs
	}
	if req.RoleNames != nil {
		policy.RoleNames = req.RoleNames
	}
	if req.EmployeeIDs != nil {
		policy.EmployeeIDs = req.EmployeeIDs
	}
	if req.Rules != nil {
		policy.Rules = rulesFromPayload(req.Rules)
	}
	if req.IsActive != nil {
		policy.IsActive = *req.IsActive
	}
	if !policy.HasRules() {
		return nil, policyerrors.ErrPolicyHasNoRules
	}

	cfg, err := s.settings.On(db).Get(ctx, tenantID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load company settings", http.StatusInternalServerError)
	}
	year := CycleYear(s.now(), cfg.LeaveCycleStartMonth)

	var results []SyncResult
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.policies.On(tx).Update(ctx, policy); err != nil {
			return apperror.Wrap(err, apperror.CodePersistence,
				"Failed to update leave policy", http.StatusInternalServerError)
		}

		results, err = s.sync.SyncAllForPolicy(ctx, tx, policy, year, cfg.LeaveCycleStartMonth)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx, tenantID)
	s.logger.Info("leave policy updated",
		zap.String("tenant_id", tenantID),
		zap.String("policy_id", policy.ID),
		zap.Int("employees_synced", len(results)),
	)

	return &PolicyWithSync{Policy: policy, SyncResults: results}, nil
}

func (s *service) Get(ctx context.Context, tenantID, policyID string) (*LeavePolicy, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policies.On(db).FindByIDAndTenant(ctx, tenantID, policyID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave policy", http.StatusInternalServerError)
	}
	if policy == nil {
		return nil, policyerrors.ErrPolicyNotFound
	}
	return policy, nil
}

// List serves from Redis when possible. Concurrent misses for the same
// tenant collapse into a single database read.
func (s *service) List(ctx context.Context, tenantID string) ([]LeavePolicy, error) {
	key := "leave_policies:" + tenantID

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var cached []LeavePolicy
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("policy cache read failed", zap.Error(err))
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		db, err := s.conns.Get(tenantID)
		if err != nil {
			return nil, err
		}

		policies, err := s.policies.On(db).ListByTenant(ctx, tenantID)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodePersistence,
				"Failed to list leave policies", http.StatusInternalServerError)
		}

		if s.cache != nil {
			if raw, jsonErr := json.Marshal(policies); jsonErr == nil {
				if err := s.cache.Set(ctx, key, raw, policyListCacheTTL).Err(); err != nil {
					s.logger.Warn("policy cache write failed", zap.Error(err))
				}
			}
		}

		return policies, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]LeavePolicy), nil
}

func (s *service) Delete(ctx context.Context, tenantID, policyID string) error {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return err
	}

	policy, err := s.policies.On(db).FindByIDAndTenant(ctx, tenantID, policyID)
	if err != nil {
		return apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave policy", http.StatusInternalServerError)
	}
	if policy == nil {
		return policyerrors.ErrPolicyNotFound
	}

	if err := s.policies.On(db).Delete(ctx, tenantID, policyID); err != nil {
		return apperror.Wrap(err, apperror.CodePersistence,
			"Failed to delete leave policy", http.StatusInternalServerError)
	}

	s.invalidateListCache(ctx, tenantID)
	s.logger.Info("leave policy deleted",
		zap.String("tenant_id", tenantID),
		zap.String("policy_id", policyID),
	)
	return nil
}

func (s *service) SyncPolicy(ctx context.Context, tenantID, policyID string) ([]SyncResult, error) {
	db, err := s.conns.Get(tenantID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policies.On(db).FindByIDAndTenant(ctx, tenantID, policyID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load leave policy", http.StatusInternalServerError)
	}
	if policy == nil {
		return nil, policyerrors.ErrPolicyNotFound
	}
	if !policy.HasRules() {
		return nil, policyerrors.ErrPolicyHasNoRules
	}

	cfg, err := s.settings.On(db).Get(ctx, tenantID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to load company settings", http.StatusInternalServerError)
	}
	year := CycleYear(s.now(), cfg.LeaveCycleStartMonth)

	var results []SyncResult
	err = db.Transaction(func(tx *gorm.DB) error {
		results, err = s.sync.SyncAllForPolicy(ctx, tx, policy, year, cfg.LeaveCycleStartMonth)
		return err
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (s *service) invalidateListCache(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, "leave_policies:"+tenantID).Err(); err != nil {
		s.logger.Warn("policy cache invalidation failed",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
	}
}
