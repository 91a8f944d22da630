package leavepolicy

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/contextutil"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		logger:  logger.Named("leavepolicy.handler"),
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	he := apperror.ToHTTP(err)
	response.Error(c, he.Status, he.Code, he.Message, he.Details)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperror.MapValidationError(err))
		return
	}

	tenantID := contextutil.GetTenantID(c.Request.Context())
	result, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperror.MapValidationError(err))
		return
	}

	tenantID := contextutil.GetTenantID(c.Request.Context())
	result, err := h.service.Update(c.Request.Context(), tenantID, c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result, nil)
}

func (h *Handler) Get(c *gin.Context) {
	tenantID := contextutil.GetTenantID(c.Request.Context())
	policy, err := h.service.Get(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, policy, nil)
}

func (h *Handler) List(c *gin.Context) {
	tenantID := contextutil.GetTenantID(c.Request.Context())
	policies, err := h.service.List(c.Request.Context(), tenantID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, policies, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	tenantID := contextutil.GetTenantID(c.Request.Context())
	if err := h.service.Delete(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) Sync(c *gin.Context) {
	tenantID := contextutil.GetTenantID(c.Request.Context())
	results, err := h.service.SyncPolicy(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"syncResults": results}, nil)
}
