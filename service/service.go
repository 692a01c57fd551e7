package service

import (
	"sync"

	"github.com/okenov/recensio/config"
	"github.com/okenov/recensio/internal/jsonlog"
	"github.com/okenov/recensio/repository"
)

type Service interface {
	auth
	users
	categories
	genres
	titles
	reviews
	comments
}

// service defines the service layer. The waitgroup is shared with the server
// so that graceful shutdown waits for in-flight background email sends.
type service struct {
	config config.Config
	wg     *sync.WaitGroup
	logger *jsonlog.Logger
	repo   repository.Repository
}

// New creates a new instance of Service.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository) *service {
	return &service{
		config: cfg,
		wg:     wg,
		logger: logger,
		repo:   repo,
	}
}
