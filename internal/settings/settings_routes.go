package settings

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, h *Handler, adminOnly gin.HandlerFunc) {
	group := rg.Group("/settings")
	{
		group.GET("", h.Get)
		group.PUT("", adminOnly, h.Update)
	}
}
