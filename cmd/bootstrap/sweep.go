package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"class-sync/internal/pkg/config"
	"class-sync/internal/usecase/commands"

	"go.uber.org/fx"
)

var SweepModule = fx.Module("sweep",
	fx.Invoke(StartSweeper),
)

// StartSweeper runs the recurring-payment sweep on the configured interval.
// The first run happens one full interval after startup so a crash-looping
// deployment does not hammer the payment platform.
func StartSweeper(lc fx.Lifecycle, cfg config.Config, sweeps commands.SweepCommands) {
	if !cfg.Sweep.Enabled {
		slog.Info("payment sweep disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go runSweepLoop(ctx, cfg.Sweep.Interval, sweeps, done)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func runSweepLoop(ctx context.Context, interval time.Duration, sweeps commands.SweepCommands, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("payment sweep scheduled", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sweeps.ProcessRecurringPayments(ctx); err != nil {
				slog.Error("scheduled payment sweep failed", "error", err)
			}
		}
	}
}
