package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	accesscachememory "commune/internal/access/cache/memory"
	accesscacheredis "commune/internal/access/cache/redis"
	"commune/internal/access/evaluator"
	"commune/internal/access/invalidation"
	accessmetrics "commune/internal/access/metrics"
	accessports "commune/internal/access/ports"
	capabilitystore "commune/internal/access/store/capability"
	policystore "commune/internal/access/store/policy"
	"commune/internal/moderation/adapters"
	moderationhandler "commune/internal/moderation/handler"
	moderationmetrics "commune/internal/moderation/metrics"
	moderationmodels "commune/internal/moderation/models"
	moderationports "commune/internal/moderation/ports"
	moderationservice "commune/internal/moderation/service"
	"commune/internal/moderation/store/pgxtx"
	reportstore "commune/internal/moderation/store/report"
	sanctionstore "commune/internal/moderation/store/sanction"
	"commune/internal/ops"
	"commune/internal/platform/config"
	"commune/internal/platform/httpserver"
	"commune/internal/platform/kafka"
	"commune/internal/platform/logger"
	"commune/internal/platform/postgres"
	"commune/internal/platform/redis"
	"commune/pkg/platform/audit"
	auditmemory "commune/pkg/platform/audit/store/memory"
	auditpostgres "commune/pkg/platform/audit/store/postgres"
)

// main wires configuration, storage, the event bus, and both modules, then
// runs the consumer group and the HTTP server until shutdown.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	db, err := postgres.NewSQL(cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	// Storage falls back to in-memory when nothing is configured so a bare
	// binary still serves local development.
	var decisionCache accessports.DecisionCache
	if rdb != nil {
		decisionCache = accesscacheredis.New(rdb.Client)
	} else {
		log.Warn("redis not configured, using in-memory decision cache")
		decisionCache = accesscachememory.New()
	}

	var (
		capStore   accessports.CapabilityStore
		polStore   accessports.PolicyStore
		auditStore audit.Store
	)
	if db != nil {
		capStore = capabilitystore.NewPostgres(db)
		polStore = policystore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
	} else {
		log.Warn("postgres not configured, using in-memory stores")
		capStore = capabilitystore.NewInMemory()
		polStore = policystore.NewInMemory()
		auditStore = auditmemory.New()
	}
	auditor := audit.NewPublisher(auditStore)

	accMetrics := accessmetrics.New()
	eval, err := evaluator.New(capStore, polStore, decisionCache, cfg.Access,
		evaluator.WithLogger(log),
		evaluator.WithMetrics(accMetrics),
		evaluator.WithAuditPublisher(auditor),
	)
	if err != nil {
		return err
	}

	dispatcher, err := invalidation.New(decisionCache, log, invalidation.WithMetrics(accMetrics))
	if err != nil {
		return err
	}

	var (
		reports   moderationports.ReportStore
		sanctions moderationports.SanctionStore
		targets   moderationports.TargetLookup
		content   moderationports.ContentModeration
		txRunner  moderationports.TxRunner
	)
	if pool != nil {
		reports = reportstore.NewPostgres(pool)
		sanctions = sanctionstore.NewPostgres(pool)
		targets = adapters.NewPostgresTargetLookup(pool)
		content = adapters.NewPostgresContentModeration(pool)
		txRunner = pgxtx.NewPoolRunner(pool)
	} else {
		directory := adapters.NewInMemoryDirectory()
		reports = reportstore.NewInMemory()
		sanctions = sanctionstore.NewInMemory()
		targets = directory
		content = directory
		txRunner = pgxtx.NewSerialRunner()
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
	}

	modOpts := []moderationservice.Option{
		moderationservice.WithLogger(log),
		moderationservice.WithMetrics(moderationmetrics.New()),
		moderationservice.WithAuditPublisher(auditor),
	}
	if producer != nil {
		modOpts = append(modOpts, moderationservice.WithEventPublisher(producer))
	}
	moderation, err := moderationservice.New(reports, sanctions, targets, content, txRunner, cfg.Moderation, modOpts...)
	if err != nil {
		return err
	}

	topics := append(invalidation.Topics(),
		moderationmodels.TopicReportCreated,
		moderationmodels.TopicAutoActionApplied,
	)
	if err := kafka.EnsureTopics(ctx, cfg.Kafka, topics...); err != nil {
		return err
	}

	consumer, err := kafka.NewConsumerGroup(cfg.Kafka, invalidation.Topics(), log)
	if err != nil {
		return err
	}
	if consumer == nil {
		log.Warn("kafka not configured, cache invalidation events will not be consumed")
	}

	tokens := ops.NewTokenService(cfg.Server.OpsTokenSigningKey)
	readiness := map[string]ops.HealthCheck{}
	if rdb != nil {
		readiness["redis"] = rdb.Health
	}
	if db != nil {
		readiness["postgres"] = db.PingContext
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.RequestID)
	ops.NewHandler(log, tokens, eval, readiness).Register(router)
	moderationhandler.New(moderation, log, ops.NewMiddlewareAdapter(tokens)).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if consumer != nil {
		g.Go(func() error {
			defer consumer.Close()
			if err := consumer.Run(gctx, dispatcher); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
