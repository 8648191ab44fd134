package api

import (
	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/infrastructure"
	"github.com/JaimeStill/folio/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination       pagination.Config
	KeyPrefix        string
	MaxUploadSize    int64
	BatchConcurrency int
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure:   &scoped,
		Pagination:       cfg.API.Pagination,
		KeyPrefix:        cfg.Storage.KeyPrefix,
		MaxUploadSize:    cfg.API.MaxUploadSizeBytes(),
		BatchConcurrency: cfg.API.BatchConcurrency,
	}
}
