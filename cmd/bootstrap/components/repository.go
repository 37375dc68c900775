package components

import (
	"class-sync/internal/infra/db"
	"class-sync/internal/infra/readstore"
	repo_impl "class-sync/internal/infra/repository"
	"class-sync/internal/usecase/commands"
	"class-sync/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			repo_impl.NewIdentityRepository,
			fx.As(new(commands.IdentityRepository)),
		),
		fx.Annotate(
			repo_impl.NewStorefrontAccountRepository,
			fx.As(new(commands.StorefrontAccountRepository)),
		),
		fx.Annotate(
			repo_impl.NewAmeliaCustomerRepository,
			fx.As(new(commands.AmeliaCustomerRepository)),
		),
		fx.Annotate(
			repo_impl.NewEventRepository,
			fx.As(new(commands.EventRepository)),
		),
		fx.Annotate(
			repo_impl.NewBookingRepository,
			fx.As(new(commands.BookingRepository)),
		),
		fx.Annotate(
			repo_impl.NewPaymentPlanRepository,
			fx.As(new(commands.PaymentPlanRepository)),
		),
		fx.Annotate(
			repo_impl.NewSeasonRepository,
			fx.As(new(commands.SeasonRepository)),
		),
		fx.Annotate(
			repo_impl.NewSubscriptionRepository,
			fx.As(new(commands.SubscriptionRepository)),
		),
		fx.Annotate(
			repo_impl.NewInvoiceRepository,
			fx.As(new(commands.InvoiceRepository)),
		),
		fx.Annotate(
			repo_impl.NewNotificationRepository,
			fx.As(new(commands.NotificationRepository)),
		),
		// Read-side store for queries
		fx.Annotate(
			readstore.NewSubscriptionReadStore,
			fx.As(new(queries.SubscriptionReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
