package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/stock-opname/internal/handler" // import the handlers that implement the gateway logic
)

// RegisterRoutes wires the whole HTTP surface: the health check, the
// stock API group (with optional rate limiting), the SSE push channel
// and the static client assets. The /api/stocks/update route is an
// alias for POST /api/stocks kept for older clients.
func RegisterRoutes(e *echo.Echo, stocks *handler.StockHandler, events *handler.EventsHandler, limiter echo.MiddlewareFunc, staticDir string) {
	// Health stays outside the API group so it is never rate limited
	// and remains reachable in degraded mode.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")
	if limiter != nil {
		api.Use(limiter)
	}
	api.GET("/stocks", stocks.List)
	api.POST("/stocks", stocks.UpsertOne)
	api.POST("/stocks/update", stocks.UpsertOne)
	api.POST("/stocks/bulk", stocks.UpsertMany)
	api.GET("/events", events.Stream)

	// The browser client (index, reconciler script, reference catalog).
	if staticDir != "" {
		e.Static("/", staticDir)
	}
}
