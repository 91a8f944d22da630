package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/contextutil"
)

// ContextLogger hangs a request-scoped logger off the request context
// so lower layers can pick it up via contextutil without knowing gin.
// Run after RequestID and Auth so the fields are populated.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		reqLogger := logger.With(
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("tenant_id", contextutil.GetTenantID(ctx)),
			zap.String("actor_id", contextutil.GetActorID(ctx)),
		)

		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))
		c.Next()
	}
}
