package routes

import (
	"credit-core/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterPayoutRoutes mounts the author earnings and payout endpoints.
func RegisterPayoutRoutes(rg *gin.RouterGroup, h *handler.Handler) {
	rg.GET("/earnings", h.ListEarnings)

	payouts := rg.Group("/payouts")
	{
		payouts.GET("", h.ListMyPayouts)
		payouts.POST("", h.RequestPayout)
		payouts.GET("/summary", h.PayoutSummary)
		payouts.GET("/settings", h.GetPayoutSettings)
		payouts.PUT("/settings", h.UpdatePayoutSettings)
		payouts.GET("/:id", h.GetMyPayout)
	}
}
