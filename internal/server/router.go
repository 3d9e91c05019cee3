package server

import (
	"credit-core/internal/handler"
	"credit-core/internal/handler/response"
	"credit-core/internal/server/routes"
	"credit-core/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPRouter builds the gin engine with every API route mounted.
func NewHTTPRouter(h *handler.Handler) *gin.Engine {
	monitor.Init()

	r := gin.Default()
	r.Use(monitor.PrometheusMiddleware())

	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			response.Success(c, gin.H{"pong": true})
		})

		routes.RegisterLedgerRoutes(api, h)
		routes.RegisterPayoutRoutes(api, h)
		routes.RegisterAdminRoutes(api, h)
	}

	return r
}
