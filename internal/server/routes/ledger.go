package routes

import (
	"credit-core/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterLedgerRoutes mounts the reader-facing wallet, purchase and unlock endpoints.
func RegisterLedgerRoutes(rg *gin.RouterGroup, h *handler.Handler) {
	rg.GET("/wallet", h.GetBalance)
	rg.GET("/packages", h.ListPackages)
	rg.GET("/rate", h.GetRate)

	purchases := rg.Group("/purchases")
	{
		purchases.GET("", h.ListPurchases)
		purchases.POST("/confirm", h.ConfirmPurchase)
	}

	chapters := rg.Group("/chapters")
	{
		chapters.POST("/:id/unlock", h.UnlockChapter)
		chapters.GET("/:id/unlock", h.UnlockStatus)
	}
	rg.GET("/unlocks", h.ListUnlocks)
}
