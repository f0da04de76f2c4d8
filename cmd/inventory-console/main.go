package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-console/internal/auth"
	"github.com/iyhunko/inventory-console/internal/catalog"
	"github.com/iyhunko/inventory-console/internal/config"
	httpAPI "github.com/iyhunko/inventory-console/internal/http"
	"github.com/iyhunko/inventory-console/internal/http/controller"
	"github.com/iyhunko/inventory-console/internal/http/middleware"
	"github.com/iyhunko/inventory-console/internal/logger"
	"github.com/iyhunko/inventory-console/internal/metrics"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/notify"
	"github.com/iyhunko/inventory-console/internal/remote"
	"github.com/iyhunko/inventory-console/internal/repository"
	reposql "github.com/iyhunko/inventory-console/internal/repository/sql"
	"github.com/iyhunko/inventory-console/internal/service"
	sqspkg "github.com/iyhunko/inventory-console/internal/sqs"
	"github.com/iyhunko/inventory-console/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.New(ctx, conf.Telemetry)
	handleErr("initializing telemetry", err)

	client, err := remote.NewHTTPClient(conf.Catalog.BaseURL, conf.Catalog.Timeout)
	handleErr("creating catalog client", err)

	gate, err := auth.NewGate(conf.Auth)
	handleErr("creating credential gate", err)

	center := notify.NewCenter(notify.DefaultCapacity)
	opts := []service.Option{
		service.WithReporter(center),
		service.WithRemoteTimeout(conf.Catalog.Timeout),
	}

	var publisher *sqspkg.Publisher
	if conf.AWS.QueueEnabled() {
		handleErr("validating queue config", conf.ValidateQueue())
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
		handleErr("creating SQS client", err)
		publisher = sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)
	}

	var (
		db      *sql.DB
		journal repository.Repository
		worker  *service.OutboxWorker
	)
	switch {
	case conf.Database.Enabled():
		db, err = reposql.StartDB(ctx, conf.Database)
		handleErr("starting database", err)
		eventRepository := reposql.NewEventRepository(db)
		journal = eventRepository
		opts = append(opts, service.WithEventSink(service.NewJournalSink(eventRepository)))
		if publisher != nil {
			worker = service.NewOutboxWorker(eventRepository, publisher, conf.Database.OutboxInterval)
			go worker.Start(ctx)
		}
	case publisher != nil:
		opts = append(opts, service.WithEventSink(service.NewPublishSink(publisher)))
	default:
		slog.Info("mutation outcomes are neither journalled nor published")
	}

	engine := service.NewEngine(catalog.NewStore(), client, opts...)
	if _, err := engine.Load(ctx); err != nil {
		// The operator can retry through POST /products/reload.
		slog.Error("initial catalog load failed", slog.Any("err", err))
		center.Report(ctx, model.NotificationError, "", "Failed to load the catalog")
	}

	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	ctr := controller.New(engine, gate, center, journal)
	router := httpAPI.InitRouter(gin.New(), middleware.New(gate), ctr)

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           otelhttp.NewHandler(router, conf.Telemetry.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metrics.StartMetricsServer(ctx, conf)

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to stop HTTP server", slog.Any("err", err))
	}
	if err := engine.Close(shutdownCtx); err != nil {
		slog.Error("mutations still in flight at shutdown", slog.Any("err", err), slog.Int("count", len(engine.InFlight())))
	}
	if worker != nil {
		// Publish what the last mutations journalled.
		worker.ProcessEvents(shutdownCtx)
	}
	if db != nil {
		_ = db.Close()
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown telemetry", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
