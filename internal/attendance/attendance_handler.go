package attendance

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
		logger:  logger.Named("attendance.handler"),
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	he := apperror.ToHTTP(err)
	response.Error(c, he.Status, he.Code, he.Message, he.Details)
}

var viewerRoles = map[string]bool{
	"hr":            true,
	"admin":         true,
	"psa":           true,
	"company_admin": true,
}

// Calendar serves the actor's own attendance; an explicit employeeId
// query switches the subject, which only HR-level roles may do.
func (h *Handler) Calendar(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := contextutil.GetTenantID(ctx)
	actorID := contextutil.GetActorID(ctx)

	employeeID := c.Query("employeeId")
	if employeeID == "" {
		employeeID = actorID
	}
	if employeeID != actorID && !viewerRoles[contextutil.GetActorRole(ctx)] {
		h.respondError(c, apperror.New(apperror.CodeForbidden,
			"Not authorized to view this employee's attendance", http.StatusForbidden))
		return
	}

	rows, err := h.service.Calendar(ctx, tenantID, employeeID, c.Query("from"), c.Query("to"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rows, nil)
}
