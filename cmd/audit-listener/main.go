package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/iyhunko/inventory-console/internal/config"
	"github.com/iyhunko/inventory-console/internal/logger"
	sqspkg "github.com/iyhunko/inventory-console/internal/sqs"
)

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)
	handleErr("validating queue config", conf.ValidateQueue())
	logger.InitJSONLogger(conf.DebugMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
	handleErr("creating SQS client", err)

	consumer := sqspkg.NewConsumer(sqsClient, conf.AWS.SQSQueueURL, func(ctx context.Context, msg sqspkg.MutationMessage) error {
		if msg.Outcome == sqspkg.OutcomeRolledBack || msg.Outcome == sqspkg.OutcomeRejected {
			slog.WarnContext(ctx, "mutation did not reach the catalog",
				slog.String("action", msg.Action),
				slog.String("product_id", msg.ProductID),
				slog.String("error", msg.Error))
		}
		return nil
	})

	slog.Info("Audit listener started. Listening for messages...")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Consumer error", slog.Any("err", err))
	}
	slog.Info("Shutting down gracefully...")
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
