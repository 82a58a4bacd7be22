package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vogiaan1904/ticketbottle-reservation/config"
	httpDelivery "github.com/vogiaan1904/ticketbottle-reservation/internal/delivery/http"
	"github.com/vogiaan1904/ticketbottle-reservation/internal/delivery/kafka/consumer"
	"github.com/vogiaan1904/ticketbottle-reservation/internal/delivery/kafka/producer"
	infraPg "github.com/vogiaan1904/ticketbottle-reservation/internal/infra/postgres"
	infraRedis "github.com/vogiaan1904/ticketbottle-reservation/internal/infra/redis"
	pgRepo "github.com/vogiaan1904/ticketbottle-reservation/internal/repository/postgres"
	redisRepo "github.com/vogiaan1904/ticketbottle-reservation/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-reservation/internal/service"
	pkgKafka "github.com/vogiaan1904/ticketbottle-reservation/pkg/kafka"
	pkgLog "github.com/vogiaan1904/ticketbottle-reservation/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	redisCli, err := infraRedis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer infraRedis.Disconnect(redisCli)

	pgPool, err := infraPg.Connect(ctx, cfg.Postgres)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Postgres: %v", err)
	}
	defer infraPg.Disconnect(pgPool)

	holdRepo := redisRepo.NewRedisHoldRepository(redisCli, l)
	invRepo := pgRepo.NewPgInventoryRepository(pgPool, l)

	// Lifecycle events and the commit audit trail go through Kafka; when it
	// is disabled the engine still works, it just publishes nothing.
	prod := producer.NewNopProducer(l)
	if cfg.Kafka.Enabled {
		kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RetryMax:     cfg.Kafka.ProducerRetryMax,
			RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}
		prod = producer.NewProducer(kafkaSyncProd, l)
	}
	defer prod.Close()

	rsvSvc := service.NewReservationService(holdRepo, invRepo, prod, cfg.Hold, l)

	// Payment confirmation sink
	if cfg.Kafka.Enabled {
		kafkaConsGr, err := pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroupID,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
		}

		cons := consumer.NewConsumer(kafkaConsGr, rsvSvc, l)
		if err := cons.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start Kafka consumer: %v", err)
		}
		defer cons.Close()
	}

	// HTTP server
	handler := httpDelivery.NewHTTPHandler(rsvSvc, l)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatalf(ctx, "Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info(ctx, "Server shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Errorf(shutdownCtx, "HTTP server shutdown: %v", err)
	}

	l.Info(context.Background(), "Server exited")
}
