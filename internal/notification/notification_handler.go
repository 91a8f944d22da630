package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/contextutil"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/response"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/tenantconn"
)

// Handler exposes the actor's inbox. There is no service layer here;
// the reads are single repository calls scoped to the actor.
type Handler struct {
	conns         tenantconn.Source
	notifications Repository
	logger        *zap.Logger
}

func NewHandler(conns tenantconn.Source, notifications Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		conns:         conns,
		notifications: notifications,
		logger:        logger.Named("notification.handler"),
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	he := apperror.ToHTTP(err)
	response.Error(c, he.Status, he.Code, he.Message, he.Details)
}

func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := contextutil.GetTenantID(ctx)

	db, err := h.conns.Get(tenantID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.notifications.On(db).ListByRecipient(ctx, tenantID,
		contextutil.GetActorID(ctx), contextutil.GetActorRole(ctx), limit)
	if err != nil {
		h.respondError(c, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to list notifications", http.StatusInternalServerError))
		return
	}

	response.Success(c, http.StatusOK, rows, nil)
}

func (h *Handler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := contextutil.GetTenantID(ctx)

	db, err := h.conns.Get(tenantID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	err = h.notifications.On(db).MarkRead(ctx, tenantID,
		contextutil.GetActorID(ctx), contextutil.GetActorRole(ctx), c.Param("id"))
	if err != nil {
		h.respondError(c, apperror.Wrap(err, apperror.CodePersistence,
			"Failed to mark notification as read", http.StatusInternalServerError))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true}, nil)
}
