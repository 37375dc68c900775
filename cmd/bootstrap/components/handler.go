package components

import (
	"class-sync/internal/handler"
	"class-sync/internal/handler/api"
	"class-sync/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewOrderHandler,
		api.NewStripeWebhookHandler,
		api.NewAdminHandler,
		middleware.NewShopTokenMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
