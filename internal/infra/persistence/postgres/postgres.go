package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"farmlink/config"
	"farmlink/internal/domain/lifecycle"
	"farmlink/internal/domain/repository"
	"farmlink/internal/errors"
	"farmlink/internal/infra/persistence/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	poolSampleInterval       = 5 * time.Second
	poolWaitWarningThreshold = 50 * time.Millisecond
)

var (
	// poolConnections samples the record store's connection pool.
	// Labels: state (open, in_use, idle)
	poolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "farmlink",
			Subsystem: "records_postgres",
			Name:      "pool_connections",
			Help:      "Connections in the record store pool by state",
		},
		[]string{"state"},
	)

	// poolWaitSeconds accumulates time session writes spent waiting for a connection.
	poolWaitSeconds = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "farmlink",
			Subsystem: "records_postgres",
			Name:      "pool_wait_seconds_total",
			Help:      "Total time spent waiting for a record store connection",
		},
	)
)

// Params defines the dependencies for opening the record database
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Open connects to PostgreSQL, migrates session_records on start and returns the record store.
func Open(params Params) (repository.RecordStore, error) {
	if params.Config.Postgres == nil {
		return nil, errors.New("postgres configuration is required")
	}

	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		// Records are single-row upserts, the implicit transaction adds nothing.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	sampleCtx, stopSampling := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			if err := Migrate(ctx, db); err != nil {
				return err
			}

			var records int64
			if err := db.WithContext(ctx).Model(&model.SessionRecordModel{}).Count(&records).Error; err != nil {
				return errors.Wrap(err, "failed to count session records")
			}
			params.Logger.Info("Using PostgreSQL record store", slog.Int64("records", records))

			go samplePool(sampleCtx, params.Logger, sqlDB, poolSampleInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			stopSampling()

			return sqlDB.Close()
		},
	})

	return NewRecordStore(db), nil
}

// samplePool publishes pool gauges and warns when session writes queue for connections.
func samplePool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			recordPoolStats(ctx, logger, prev, cur)
			prev = cur
		}
	}
}

func recordPoolStats(ctx context.Context, logger *slog.Logger, prev, cur sql.DBStats) {
	poolConnections.WithLabelValues("open").Set(float64(cur.OpenConnections))
	poolConnections.WithLabelValues("in_use").Set(float64(cur.InUse))
	poolConnections.WithLabelValues("idle").Set(float64(cur.Idle))

	waits := cur.WaitCount - prev.WaitCount
	if waits <= 0 {
		return
	}
	waited := cur.WaitDuration - prev.WaitDuration
	poolWaitSeconds.Add(waited.Seconds())

	level := slog.LevelDebug
	if waited >= poolWaitWarningThreshold {
		level = slog.LevelWarn
	}
	logger.LogAttrs(ctx, level, "Session record writes waited for a connection",
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avg_wait", waited/time.Duration(waits)),
		slog.Int("max_open_conns", cur.MaxOpenConnections),
		slog.Int("in_use_conns", cur.InUse),
	)
}
