package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	cafeadmin "github.com/ReaperX0402/Bean-there-admin"

	utils "github.com/medatechnology/goutil"
	"github.com/medatechnology/goutil/metrics"
	"github.com/medatechnology/goutil/simplelog"
	"github.com/medatechnology/simplehttp"
	"github.com/medatechnology/simplehttp/framework/fiber"
)

const (
	DEFAULT_HTTP_ENVIRONMENT = "./.env.cafeadmin"
)

// if console settings are not there, get from environment. Console config always wins
func CopySettingsFromConsole(console *cafeadmin.Console, config *simplehttp.Config) {
	if console.Config.Host != "" {
		config.Hostname = console.Config.Host
	}
	if console.Config.Port != "" {
		config.Port = console.Config.Port
	}
	if console.Config.Label != "" {
		config.AppName = console.Config.Label
	}
	config.SSLRedirect = console.Config.SSL
}

// CreateServer builds the HTTP surface around an assembled console and
// starts the background monitors.
func CreateServer(console *cafeadmin.Console) (simplehttp.Server, *cafeadmin.AlertManager) {
	simplelog.DEBUG_LEVEL = 1

	el := metrics.StartTimeIt("Loading http environment...", 0)
	// Reload will overwrite, so put the most precedence last
	utils.ReloadEnvEach("./.env.simplehttp", DEFAULT_HTTP_ENVIRONMENT)
	config := simplehttp.LoadConfig()
	CopySettingsFromConsole(console, config)
	metrics.StopTimeItPrint(el, "Done")

	el = metrics.StartTimeIt("Creating http server...", 0)
	server := fiber.NewServer(config)
	metrics.StopTimeItPrint(el, "Done")

	// Initialize and start alert monitoring
	el = metrics.StartTimeIt("Starting alert monitoring system...", 0)
	alertMgr := cafeadmin.NewAlertManager(console)
	alertMgr.Start(context.Background())
	metrics.StopTimeItPrint(el, "Done")

	el = metrics.StartTimeIt("Registring endpoints ...", 0)
	RegisterRoutes(server, console)
	metrics.StopTimeItPrint(el, "Done")

	el = metrics.StartTimeIt("Registring internal endpoints ...", 0)
	RegisterInternalRoutes(server, console)
	metrics.StopTimeItPrint(el, "Done")

	el = metrics.StartTimeIt("Registring monitoring endpoints ...", 0)
	RegisterMonitoringRoutes(server, console, alertMgr)
	metrics.StopTimeItPrint(el, "Done")

	return server, alertMgr
}

// RegisterRoutes sets up the auth and dashboard routes
func RegisterRoutes(server simplehttp.Server, console *cafeadmin.Console) {
	CORSConfig := &simplehttp.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", HEADER_API_KEY, HEADER_SESSION_TOKEN},
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}

	// Register global middleware
	server.Use(
		simplehttp.MiddlewareRecover(),
		simplehttp.MiddlewareCORS(CORSConfig),
		simplehttp.MiddlewareHeaderParser(), // use ctx.Get(simplehttp.REQUEST_HEADER_PARSED_STRING).(*RequestHeader) to get header
		simplehttp.MiddlewareLogger(simplehttp.NewDefaultLogger()),
	)

	auth := server.Group("/auth")
	// All auth routes need the API key. Only signin/signup read the
	// backend; signout and session introspection work purely against
	// the in-memory store, so an unconfigured deployment can still
	// answer them.
	auth.Use(simplehttp.WithName("api-key", MiddlewareAPIKeyHeader(console)))
	requireBackend := MiddlewareRequireBackend(console)
	{
		auth.POST("/signin", requireBackend(HandleSignIn(console)))
		auth.POST("/signup", requireBackend(HandleSignUp(console)))
		auth.POST("/signout", HandleSignOut(console))
		auth.GET("/session", HandleSession(console))
		auth.GET("/pingpong", func(ctx simplehttp.Context) error {
			state := NewHandlerState(ctx, "", "/pingpong", "pingpong")
			return state.SetSuccess(cafeadmin.PingPong(), nil).LogAndResponse("pingpong response", nil, true)
		})
	}

	api := server.Group("/api")
	api.Use(
		simplehttp.WithName("api-key", MiddlewareAPIKeyHeader(console)),
		simplehttp.WithName("require-backend", MiddlewareRequireBackend(console)),
		simplehttp.WithName("session-check", MiddlewareSessionCheck(console)),
	)
	{
		api.GET("/orders", HandleOrders(console))
		api.PUT("/orders/status", HandleOrderStatusUpdate(console))

		api.GET("/menus", HandleMenus(console))
		api.POST("/menus", HandleMenuCreate(console))
		api.PUT("/menus", HandleMenuUpdate(console))
		api.DELETE("/menus", HandleMenuDelete(console))

		api.GET("/menu-items", HandleMenuItems(console))
		api.POST("/menu-items", HandleMenuItemCreate(console))
		api.PUT("/menu-items", HandleMenuItemUpdate(console))
		api.DELETE("/menu-items", HandleMenuItemDelete(console))

		api.GET("/profile", HandleProfile(console))
	}
}

// splitBasicAuth parses the "user:pass" internal credential.
func splitBasicAuth(credential string) (string, string) {
	parts := strings.SplitN(credential, ":", 2)
	if len(parts) != 2 {
		return credential, ""
	}
	return parts[0], parts[1]
}
