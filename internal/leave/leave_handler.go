package leave

import (
	"net/http"
	"strconv"

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
		logger:  logger.Named("leave.handler"),
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	he := apperror.ToHTTP(err)
	response.Error(c, he.Status, he.Code, he.Message, he.Details)
}

func actorFrom(c *gin.Context) Actor {
	ctx := c.Request.Context()
	return Actor{
		ID:   contextutil.GetActorID(ctx),
		Role: contextutil.GetActorRole(ctx),
	}
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}

func (h *Handler) Apply(c *gin.Context) {
	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperror.MapValidationError(err))
		return
	}

	tenantID := contextutil.GetTenantID(c.Request.Context())
	leave, err := h.service.Apply(c.Request.Context(), tenantID, actorFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, leave, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	var req ApproveLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.respondError(c, apperror.MapValidationError(err))
		return
	}

	tenantID := contextutil.GetTenantID(c.Request.Context())
	leave, err := h.service.Approve(c.Request.Context(), tenantID, actorFrom(c), c.Param("id"), req.Remark)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, leave, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	var req RejectLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.respondError(c, apperror.MapValidationError(err))
		return
	}

	tenantID := contextutil.GetTenantID(c.Request.Context())
	leave, err := h.service.Reject(c.Request.Context(), tenantID, actorFrom(c), c.Param("id"), req.RejectionReason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, leave, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	tenantID := contextutil.GetTenantID(c.Request.Context())
	leave, err := h.service.Cancel(c.Request.Context(), tenantID, actorFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, leave, nil)
}

func (h *Handler) Edit(c *gin.Context) {
	var req EditLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperror.MapValidationError(err))
		return
	}

	tenantID := contextutil.GetTenantID(c.Request.Context())
	leave, err := h.service.Edit(c.Request.Context(), tenantID, actorFrom(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, leave, nil)
}

func (h *Handler) MyBalances(c *gin.Context) {
	tenantID := contextutil.GetTenantID(c.Request.Context())
	balances, err := h.service.MyBalances(c.Request.Context(), tenantID, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, balances, nil)
}

func (h *Handler) MyLeaves(c *gin.Context) {
	tenantID := contextutil.GetTenantID(c.Request.Context())
	leaves, err := h.service.MyLeaves(c.Request.Context(), tenantID, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, leaves, nil)
}

func (h *Handler) TeamLeaves(c *gin.Context) {
	page, limit := pagination(c)
	tenantID := contextutil.GetTenantID(c.Request.Context())

	leaves, total, err := h.service.TeamLeaves(c.Request.Context(), tenantID, actorFrom(c), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, limit)
	response.Success(c, http.StatusOK, leaves, &meta)
}

func (h *Handler) AllLeaves(c *gin.Context) {
	page, limit := pagination(c)
	tenantID := contextutil.GetTenantID(c.Request.Context())

	leaves, total, err := h.service.AllLeaves(c.Request.Context(), tenantID, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, limit)
	response.Success(c, http.StatusOK, leaves, &meta)
}

func (h *Handler) ApprovedRanges(c *gin.Context) {
	tenantID := contextutil.GetTenantID(c.Request.Context())
	ranges, err := h.service.ApprovedRanges(c.Request.Context(), tenantID, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ranges, nil)
}
