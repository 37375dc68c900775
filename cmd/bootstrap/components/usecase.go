package components

import (
	"class-sync/internal/pkg/clock"
	"class-sync/internal/pkg/config"
	"class-sync/internal/usecase/commands"
	"class-sync/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewIdentityCommands,
		commands.NewRegistrationCommands,
		commands.NewSubscriptionCommands,
		commands.NewSweepCommands,
		NewOrderCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewSubscriptionQueries,
	),
)

func NewOrderCommands(
	cfg config.Config,
	identities commands.IdentityCommands,
	identityReads commands.IdentityRepository,
	registrations commands.RegistrationCommands,
	subscriptions commands.SubscriptionCommands,
) commands.OrderCommands {
	return commands.NewOrderCommands(identities, identityReads, registrations, subscriptions,
		cfg.Shop.TriggerStatuses, cfg.Shop.DefaultSeasonTag)
}
