package handler

import (
	"github.com/jellydator/ttlcache/v3"
	"github.com/okenov/recensio/config"
	"github.com/okenov/recensio/internal/jsonlog"
	"github.com/okenov/recensio/service"
	"golang.org/x/time/rate"
)

// Handler defines the handler layer. The cache holds one rate limiter per
// client IP; entries expire on their own once a client goes quiet.
type Handler struct {
	config   config.Config
	logger   *jsonlog.Logger
	limiters *ttlcache.Cache[string, *rate.Limiter]
	service  service.Service
}

// New creates a new instance of Handler.
func New(cfg config.Config, logger *jsonlog.Logger, limiters *ttlcache.Cache[string, *rate.Limiter], service service.Service) *Handler {
	return &Handler{
		config:   cfg,
		logger:   logger,
		limiters: limiters,
		service:  service,
	}
}
