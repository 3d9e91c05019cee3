package routes

import (
	"credit-core/internal/handler"

	"github.com/gin-gonic/gin"
)

func RegisterAdminRoutes(rg *gin.RouterGroup, h *handler.Handler) {
	adminGroup := rg.Group("/admin")
	// AdminAuth middleware goes here once the gateway forwards roles
	{
		adminGroup.GET("/payouts", h.ListPayouts)
		adminGroup.POST("/payouts/:id/resubmit", h.ResubmitPayout)
		adminGroup.POST("/passes/:pass", h.RunPass)

		adminGroup.POST("/packages", h.CreatePackage)
		adminGroup.PUT("/packages/:id", h.UpdatePackage)
		adminGroup.PUT("/packages/:id/active", h.SetPackageActive)
	}
}
