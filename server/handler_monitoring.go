package server

import (
	"net/http"
	"strconv"

	cafeadmin "github.com/ReaperX0402/Bean-there-admin"

	"github.com/medatechnology/simplehttp"
)

// RegisterMonitoringRoutes registers monitoring and metrics endpoints
func RegisterMonitoringRoutes(server simplehttp.Server, console *cafeadmin.Console, alertMgr *cafeadmin.AlertManager) {
	// Public health check endpoints (no auth required)
	server.GET("/health", HandleHealth(console))
	server.GET("/ready", HandleReadiness(console))

	// Protected monitoring endpoints (basic auth required)
	username, password := splitBasicAuth(console.Config.InternalAPI)
	monitoring := server.Group("/monitoring")
	monitoring.Use(simplehttp.MiddlewareBasicAuth(username, password))
	{
		monitoring.GET("/metrics", HandleMetrics(console))
		monitoring.GET("/metrics/sessions", HandleSessionMetrics(console))
		monitoring.GET("/alerts", HandleAlerts(alertMgr))
		monitoring.GET("/alerts/stats", HandleAlertStats(alertMgr))
		monitoring.DELETE("/alerts", HandleClearAlerts(alertMgr))
		monitoring.GET("/health/detailed", HandleDetailedHealth(console, alertMgr))
	}
}

// HandleHealth returns basic health status (liveness probe)
func HandleHealth(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		return ctx.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"version": cafeadmin.APP_VERSION,
			"service": cafeadmin.APP_NAME,
		})
	}
}

// HandleReadiness returns readiness status (readiness probe)
func HandleReadiness(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		// Check if backend is connected
		if !console.Datastore.IsConnected() {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"reason": "backend connection failed",
			})
		}

		// Check session store headroom
		if console.IsSessionStoreNearCapacity(95.0) {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"reason": "session store near exhaustion",
			})
		}

		return ctx.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ready",
			"version": cafeadmin.APP_VERSION,
		})
	}
}

// HandleMetrics returns comprehensive metrics
func HandleMetrics(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "/monitoring/metrics", "metrics")

		metrics := console.MetricsSnapshot()

		return state.SetSuccess("Metrics retrieved successfully", metrics).
			LogAndResponse("metrics retrieved", nil, false)
	}
}

// HandleSessionMetrics returns session store specific metrics
func HandleSessionMetrics(console *cafeadmin.Console) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "/monitoring/metrics/sessions", "session_metrics")

		sessionStats := console.GetSessionStats()

		return state.SetSuccess("Session metrics retrieved successfully", sessionStats).
			LogAndResponse("session metrics retrieved", nil, false)
	}
}

// HandleAlerts returns recent alerts
func HandleAlerts(alertMgr *cafeadmin.AlertManager) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "/monitoring/alerts", "alerts")

		// Get limit from query parameter (default 20)
		limit := 20
		if limitStr := ctx.GetQueryParam("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
				limit = l
			}
		}

		// Get level filter from query parameter (optional)
		levelFilter := ctx.GetQueryParam("level")

		var alerts []cafeadmin.Alert
		if levelFilter != "" {
			level := cafeadmin.AlertLevel(levelFilter)
			alerts = alertMgr.GetAlertsByLevel(level)
		} else {
			alerts = alertMgr.GetRecentAlerts(limit)
		}

		response := map[string]interface{}{
			"alerts": alerts,
			"count":  len(alerts),
		}

		return state.SetSuccess("Alerts retrieved successfully", response).
			LogAndResponse("alerts retrieved", nil, false)
	}
}

// HandleAlertStats returns alert statistics
func HandleAlertStats(alertMgr *cafeadmin.AlertManager) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "/monitoring/alerts/stats", "alert_stats")

		stats := alertMgr.GetAlertStats()

		return state.SetSuccess("Alert stats retrieved successfully", stats).
			LogAndResponse("alert stats retrieved", nil, false)
	}
}

// HandleClearAlerts clears all alerts
func HandleClearAlerts(alertMgr *cafeadmin.AlertManager) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		state := NewHandlerState(ctx, "internal", "/monitoring/alerts", "clear_alerts")

		alertMgr.ClearAlerts()

		return state.SetSuccess("Alerts cleared successfully", nil).
			LogAndResponse("alerts cleared", nil, true)
	}
}

// HandleDetailedHealth returns detailed health status
func HandleDetailedHealth(console *cafeadmin.Console, alertMgr *cafeadmin.AlertManager) simplehttp.HandlerFunc {
	return func(ctx simplehttp.Context) error {
		health := console.GetHealthStatus()

		// Add additional details
		health["session_stats"] = console.GetSessionStats()
		health["recent_alerts"] = alertMgr.GetRecentAlerts(5)

		status := http.StatusOK
		if health["status"] == "unhealthy" {
			status = http.StatusServiceUnavailable
		} else if health["status"] == "degraded" {
			status = http.StatusOK // Still return 200 for degraded
		}

		return ctx.JSON(status, cafeadmin.StandardResponse{
			Status:  status,
			Message: "Health status retrieved",
			Data:    health,
		})
	}
}
