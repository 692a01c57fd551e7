package main

import (
	"os"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/joho/godotenv"
	"github.com/okenov/recensio/config"
	"github.com/okenov/recensio/handler"
	"github.com/okenov/recensio/internal/jsonlog"
	"github.com/okenov/recensio/repository"
	"github.com/okenov/recensio/repository/postgres"
	"github.com/okenov/recensio/service"
	"golang.org/x/time/rate"
)

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	repo    repository.Repository
	service service.Service
	handler *handler.Handler
}

func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	// Load a local .env file if one exists, then decode the configuration.
	_ = godotenv.Load()
	cfg, err := config.Decode()
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	// Initialize database connection
	db, err := postgres.OpenDBConn(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer db.Close()
	logger.PrintInfo("database connection pool established", nil)

	// Other shared resources: waitgroup and the per-IP rate limiter cache
	var wg sync.WaitGroup
	limiters := ttlcache.New(ttlcache.WithTTL[string, *rate.Limiter](3 * time.Minute))
	go limiters.Start()

	// Application layers
	repo := repository.New(db)
	service := service.New(cfg, &wg, logger, repo)
	handler := handler.New(cfg, logger, limiters, service)

	// Instantiate application
	app := &app{
		config:  cfg,
		repo:    repo,
		service: service,
		handler: handler,
	}

	// Start HTTP server
	err = app.serve(&wg, logger)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}
