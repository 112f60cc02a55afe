package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"identity/config"
	"identity/internal/domain/lifecycle"
	"identity/internal/errors"
	"identity/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus/collectors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// New opens the PostgreSQL connection. Ping and migrations run on fx start.
func New(params Params) (*gorm.DB, error) {
	if params.Config.Postgres == nil {
		return nil, errors.New("postgres configuration is missing")
	}

	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		// Disable GORM's per-statement implicit transaction.
		// We keep explicit transactions via txManager.Execute for multi-step atomic operations.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	if params.Metrics != nil {
		if err := params.Metrics.Register(collectors.NewDBStatsCollector(sqlDB, "identity")); err != nil {
			return nil, errors.Wrap(err, "failed to register pool collector")
		}
	}

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	// Add lifecycle management
	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			if params.Config.Migration != nil && params.Config.Migration.Enabled {
				if err := RunMigrations(ctx, sqlDB); err != nil {
					return err
				}
				params.Logger.Info("Database migrations applied")
			}

			go monitorDBPool(monitorCtx, params.Logger, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

// monitorDBPool logs connection waits between ticks. Steady-state gauges are on /metrics.
func monitorDBPool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	if logger == nil || sqlDB == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			if level, attrs, ok := poolWaitReport(prev, cur); ok {
				logger.LogAttrs(ctx, level, "Postgres pool wait", attrs...)
			}
			prev = cur
		}
	}
}

// poolWaitReport describes the waits that happened between two snapshots.
func poolWaitReport(prev, cur sql.DBStats) (slog.Level, []slog.Attr, bool) {
	waits := cur.WaitCount - prev.WaitCount
	if waits <= 0 {
		return 0, nil, false
	}

	waited := cur.WaitDuration - prev.WaitDuration
	level := slog.LevelDebug
	if waited >= dbPoolWarnDurationThreshold {
		level = slog.LevelWarn
	}

	return level, []slog.Attr{
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("inUse", cur.InUse),
		slog.Int("maxOpen", cur.MaxOpenConnections),
	}, true
}
