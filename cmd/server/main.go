package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/mailto-campaigns/internal/auth"
	"github.com/unclebandit/mailto-campaigns/internal/config"
	"github.com/unclebandit/mailto-campaigns/internal/controller"
	"github.com/unclebandit/mailto-campaigns/internal/db"
	"github.com/unclebandit/mailto-campaigns/internal/handler"
	"github.com/unclebandit/mailto-campaigns/internal/logger"
	"github.com/unclebandit/mailto-campaigns/internal/metrics"
	"github.com/unclebandit/mailto-campaigns/internal/queue"
	"github.com/unclebandit/mailto-campaigns/internal/repository"
	"github.com/unclebandit/mailto-campaigns/internal/server"
	"github.com/unclebandit/mailto-campaigns/internal/service"
	"github.com/unclebandit/mailto-campaigns/internal/visitor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.IsProduction(), File: cfg.LogFile})
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DSN(), log)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer conn.Close()
	if err := db.EnsureSchema(ctx, conn); err != nil {
		log.WithError(err).Fatal("ensure schema")
	}

	q := newQueue(cfg, log)
	if closer, ok := q.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	gate, err := auth.NewGate(auth.Options{
		Password:       cfg.AdminPassword,
		PasswordBcrypt: cfg.AdminPasswordBcrypt,
		Secret:         cfg.SessionSecret,
		TTL:            cfg.SessionTTL,
		Secure:         cfg.IsProduction(),
	}, log)
	if err != nil {
		log.WithError(err).Fatal("session gate")
	}

	var geo visitor.GeoLocator
	if cfg.GeoLookupURL != "" {
		geo = visitor.NewHTTPGeoLocator(cfg.GeoLookupURL, cfg.GeoLookupTimeout)
	}

	campaignRepo := &repository.CampaignRepository{DB: conn}
	submissionRepo := &repository.SubmissionRepository{DB: conn}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		Queue:        q,
		Metrics:      m,
		Log:          log,
		Location:     loc,
	}
	submissionService := &service.SubmissionService{
		SubmissionRepo: submissionRepo,
		CampaignRepo:   campaignRepo,
		Geo:            geo,
		GeoTimeout:     cfg.GeoLookupTimeout,
		Queue:          q,
		Metrics:        m,
		Log:            log,
		Location:       loc,
	}
	dashboardService := &service.DashboardService{
		CampaignRepo:   campaignRepo,
		SubmissionRepo: submissionRepo,
		AggregateLimit: cfg.AggregateLimit,
		ExportLimit:    cfg.ExportLimit,
		TopN:           cfg.TopN,
		Location:       loc,
	}

	renderer, err := handler.NewRenderer(log)
	if err != nil {
		log.WithError(err).Fatal("parse templates")
	}

	router := server.NewRouter(server.Deps{
		Campaigns:   &controller.CampaignController{CampaignService: campaignService, Log: log},
		Submissions: &controller.SubmissionController{SubmissionService: submissionService, Log: log},
		Auth:        &controller.AuthController{Gate: gate, Metrics: m, Log: log},
		Export:      &controller.ExportController{DashboardService: dashboardService, Log: log},
		Pages:       &handler.CampaignHandler{Service: campaignService, Renderer: renderer},
		Admin: &handler.AdminHandler{
			DashboardService: dashboardService,
			CampaignService:  campaignService,
			Gate:             gate,
			Renderer:         renderer,
		},
		Gate:    gate,
		Metrics: m,
		DB:      conn,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Address).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// newQueue publishes to RabbitMQ when AMQP_URL is set. Otherwise events stay
// in process and only reach the audit log.
func newQueue(cfg *config.Config, log *logrus.Logger) queue.Queue {
	if cfg.AMQPURL != "" {
		q, err := queue.DialAMQP(cfg.AMQPURL, cfg.EventsQueue, log)
		if err == nil {
			return q
		}
		log.WithError(err).Warn("rabbitmq unavailable, falling back to in-memory events")
	}
	q := queue.NewInMemoryQueue(log)
	if err := queue.SubscribeAudit(q, log); err != nil {
		log.WithError(err).Warn("subscribe audit log")
	}
	return q
}
