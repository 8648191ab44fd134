package api

import "github.com/JaimeStill/folio/internal/documents"

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents documents.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Documents: documents.New(
			runtime.Database.Connection(),
			runtime.Storage,
			runtime.Pipeline,
			runtime.Logger,
			documents.Config{
				Pagination:       runtime.Pagination,
				KeyPrefix:        runtime.KeyPrefix,
				BatchConcurrency: runtime.BatchConcurrency,
			},
		),
	}
}
