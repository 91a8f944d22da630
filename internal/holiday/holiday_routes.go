package holiday

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, h *Handler, adminOnly gin.HandlerFunc) {
	holidays := rg.Group("/holidays")
	{
		holidays.GET("", h.List)
		holidays.POST("", adminOnly, h.Create)
		holidays.DELETE("/:id", adminOnly, h.Delete)
	}
}
