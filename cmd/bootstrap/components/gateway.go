package components

import (
	"class-sync/internal/handler/api"
	"class-sync/internal/infra/amelia"
	"class-sync/internal/infra/stripegw"
	"class-sync/internal/usecase/commands"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			amelia.NewClient,
			fx.As(new(commands.BookingGateway)),
		),
		fx.Annotate(
			stripegw.NewGateway,
			fx.As(new(commands.PaymentGateway)),
			fx.As(new(api.EventVerifier)),
		),
	),
)
