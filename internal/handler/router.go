package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"class-sync/internal/handler/api"
	"class-sync/internal/handler/middleware"
	"class-sync/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	orderHandler *api.OrderHandler,
	stripeHandler *api.StripeWebhookHandler,
	adminHandler *api.AdminHandler,
	shopToken *middleware.ShopTokenMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, orderHandler, stripeHandler, adminHandler, shopToken)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	orderHandler *api.OrderHandler,
	stripeHandler *api.StripeWebhookHandler,
	adminHandler *api.AdminHandler,
	shopToken *middleware.ShopTokenMiddleware,
) {
	engine.GET("/health", healthCheck)

	hooks := engine.Group("/hooks")
	{
		shopHooks := hooks.Group("")
		shopHooks.Use(shopToken.RequireShopToken())
		addRoutes(shopHooks, []route{
			{Method: http.MethodPost, Path: "/orders", Handler: orderHandler.StatusChanged},
		})

		// Stripe authenticates with its signature header, not the shop token.
		addRoutes(hooks, []route{
			{Method: http.MethodPost, Path: "/stripe", Handler: stripeHandler.HandleEvent},
		})
	}

	subscriptions := engine.Group("/subscriptions")
	subscriptions.Use(shopToken.RequireShopToken())
	{
		addRoutes(subscriptions, []route{
			{Method: http.MethodGet, Path: "/:order_id", Handler: orderHandler.GetSubscription},
		})
	}

	admin := engine.Group("/admin")
	admin.Use(shopToken.RequireShopToken())
	{
		addRoutes(admin, []route{
			{Method: http.MethodPost, Path: "/sweep", Handler: adminHandler.TriggerSweep},
		})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
