package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"kinfolk/internal/audit"
	familyhandler "kinfolk/internal/family/handler"
	familymetrics "kinfolk/internal/family/metrics"
	familyservice "kinfolk/internal/family/service"
	"kinfolk/internal/family/store/person"
	"kinfolk/internal/family/store/union"
	"kinfolk/internal/platform/config"
	"kinfolk/internal/platform/metrics"
	"kinfolk/internal/platform/postgres"
	"kinfolk/internal/platform/redis"
	reporthandler "kinfolk/internal/report/handler"
	reportmetrics "kinfolk/internal/report/metrics"
	reportservice "kinfolk/internal/report/service"
	"kinfolk/internal/report/store/export"
	"kinfolk/internal/sharetoken"
	"kinfolk/pkg/platform/tx"
)

const memoryAuditLimit = 10000

type auditSink interface {
	Emit(ctx context.Context, e audit.Event) error
	Close(ctx context.Context) error
}

// app holds the wired router plus everything that must be released on
// shutdown, in acquisition order.
type app struct {
	router  http.Handler
	checks  map[string]func(context.Context) error
	closers []func(context.Context) error
}

// close releases resources in reverse acquisition order.
func (a *app) close(ctx context.Context, log *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.WarnContext(ctx, "shutdown step failed", "error", err)
		}
	}
}

// startRelay runs the outbox relay until shutdown and drains once more on
// the way out.
func (a *app) startRelay(ctx context.Context, relay *audit.Relay, log *slog.Logger) {
	relayCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = relay.Run(relayCtx)
	}()
	a.closers = append(a.closers, func(ctx context.Context) error {
		cancel()
		<-done
		if _, err := relay.Drain(ctx); err != nil {
			return fmt.Errorf("final audit outbox drain: %w", err)
		}
		return nil
	})
	log.DebugContext(ctx, "audit outbox relay started")
}

// newApp picks Postgres, Redis and Kafka backends when configured and
// falls back to in-process implementations otherwise.
func newApp(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{checks: make(map[string]func(context.Context) error)}

	var (
		people familyservice.PersonStore
		unions familyservice.UnionStore
		runner tx.Runner
	)
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			a.close(ctx, log)
			return nil, err
		}
		people, unions, runner = person.NewPostgres(db), union.NewPostgres(db), tx.NewSQLRunner(db)
		a.checks["postgres"] = db.PingContext
		log.InfoContext(ctx, "family stores backed by postgres")
	} else {
		people, unions, runner = person.NewInMemory(), union.NewInMemory(), tx.NewLockRunner()
		log.InfoContext(ctx, "DATABASE_URL not set, family stores are in memory")
	}

	var exports reportservice.ExportStore
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		a.close(ctx, log)
		return nil, err
	}
	if rc != nil {
		a.closers = append(a.closers, func(context.Context) error { return rc.Close() })
		exports = export.NewRedis(rc.Client)
		a.checks["redis"] = rc.Health
		log.InfoContext(ctx, "report exports backed by redis")
	} else {
		exports = export.NewInMemory()
		log.InfoContext(ctx, "REDIS_URL not set, report exports are in memory")
	}

	var publisher auditSink
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic,
			audit.WithLogger(log),
			audit.WithMetrics(audit.NewMetrics()),
		)
		if err != nil {
			a.close(ctx, log)
			return nil, fmt.Errorf("audit publisher: %w", err)
		}
		if err := kp.EnsureTopic(ctx, int32(cfg.Kafka.Partitions), 1); err != nil {
			log.WarnContext(ctx, "could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		publisher = kp
		if db != nil {
			// Kafka closes after the relay stops, so the final drain can still produce.
			a.closers = append(a.closers, kp.Close)
			publisher = audit.NewOutbox(db)
			a.startRelay(ctx, audit.NewRelay(db, kp, audit.WithRelayLogger(log)), log)
			log.InfoContext(ctx, "audit events relayed to kafka through the postgres outbox", "topic", cfg.Kafka.AuditTopic)
		} else {
			log.InfoContext(ctx, "audit events published to kafka", "topic", cfg.Kafka.AuditTopic)
		}
	} else {
		publisher = audit.NewBoundedMemoryPublisher(memoryAuditLimit)
	}
	a.closers = append(a.closers, publisher.Close)

	familySvc := familyservice.New(people, unions,
		familyservice.WithLogger(log),
		familyservice.WithMetrics(familymetrics.New()),
		familyservice.WithAuditPublisher(publisher),
		familyservice.WithTxRunner(runner),
	)
	signer := sharetoken.NewSigner(cfg.Reports.SigningKey, sharetoken.DefaultIssuer, sharetoken.DefaultAudience)
	reportSvc := reportservice.New(familySvc, exports, signer,
		reportservice.WithLogger(log),
		reportservice.WithMetrics(reportmetrics.New()),
		reportservice.WithAuditPublisher(publisher),
		reportservice.WithTTL(cfg.Reports.TTL),
		reportservice.WithShareBaseURL(cfg.Reports.ShareBaseURL),
	)

	a.router = newRouter(log, metrics.New(), a.checks,
		familyhandler.New(familySvc, log),
		reporthandler.New(reportSvc, log),
	)
	return a, nil
}
