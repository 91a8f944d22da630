package leave

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, h *Handler) {
	leaves := rg.Group("/leaves")
	{
		leaves.POST("", h.Apply)
		leaves.GET("", h.AllLeaves)
		leaves.GET("/mine", h.MyLeaves)
		leaves.GET("/team", h.TeamLeaves)
		leaves.GET("/balances", h.MyBalances)
		leaves.GET("/approved-dates", h.ApprovedRanges)
		leaves.PUT("/:id", h.Edit)
		leaves.PUT("/:id/approve", h.Approve)
		leaves.PUT("/:id/reject", h.Reject)
		leaves.PUT("/:id/cancel", h.Cancel)
	}
}
