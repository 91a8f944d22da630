package leavepolicy

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the policy endpoints under the given group.
// Auth and tenant resolution are handled by middleware upstream;
// mutations are additionally gated to HR-side roles.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, adminOnly gin.HandlerFunc) {
	policies := rg.Group("/leave-policies")
	{
		policies.POST("", adminOnly, h.Create)
		policies.GET("", h.List)
		policies.GET("/:id", h.Get)
		policies.PUT("/:id", adminOnly, h.Update)
		policies.DELETE("/:id", adminOnly, h.Delete)
		policies.POST("/:id/sync", adminOnly, h.Sync)
	}
}
