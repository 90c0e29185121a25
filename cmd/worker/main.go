package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/mailto-campaigns/internal/config"
	"github.com/unclebandit/mailto-campaigns/internal/logger"
	"github.com/unclebandit/mailto-campaigns/internal/queue"
)

// The worker drains the events queue and writes one audit line per event.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.IsProduction(), File: cfg.LogFile})
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL must be set for the worker")
	}

	q, err := queue.DialAMQP(cfg.AMQPURL, cfg.EventsQueue, log)
	if err != nil {
		log.WithError(err).Fatal("connect to rabbitmq")
	}
	defer q.Close()

	if err := queue.SubscribeAudit(q, log); err != nil {
		log.WithError(err).Fatal("subscribe audit log")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("queue", cfg.EventsQueue).Info("worker running, waiting for events")
	if err := q.Consume(ctx); err != nil {
		log.WithError(err).Fatal("consume events")
	}
	log.Info("worker stopped")
}
