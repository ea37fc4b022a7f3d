package provider

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers provider configuration routes with Echo
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/api/provider/kinds", h.ListKinds)
	e.POST("/api/provider/test", h.TestConfig)

	orgs := e.Group("/api/orgs/:orgId/provider")
	orgs.GET("", h.GetConfig)
	orgs.PUT("", h.SaveConfig)
	orgs.DELETE("", h.ClearConfig)
	orgs.POST("/switch", h.Switch)
}
