package holiday

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
		logger:  logger.Named("holiday.handler"),
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	he := apperror.ToHTTP(err)
	response.Error(c, he.Status, he.Code, he.Message, he.Details)
}

func (h *Handler) List(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))

	tenantID := contextutil.GetTenantID(c.Request.Context())
	holidays, err := h.service.List(c.Request.Context(), tenantID, year)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, holidays, nil)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperror.MapValidationError(err))
		return
	}

	tenantID := contextutil.GetTenantID(c.Request.Context())
	created, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	tenantID := contextutil.GetTenantID(c.Request.Context())
	if err := h.service.Delete(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
