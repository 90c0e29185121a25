// cmd/seeder/main.go
package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/mailto-campaigns/internal/config"
	"github.com/unclebandit/mailto-campaigns/internal/db"
	"github.com/unclebandit/mailto-campaigns/internal/logger"
)

var seedFiles = []string{
	"seed/schema.sql",
	"seed/campaigns.sql",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel})

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DSN(), log)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer conn.Close()

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			log.WithError(err).Fatalf("failed to read %s", file)
		}
		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			log.WithError(err).Fatalf("failed to execute %s", file)
		}
		log.WithField("file", file).Info("seeded")
	}

	log.Info("database seeding completed")
}
