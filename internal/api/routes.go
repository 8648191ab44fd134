package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/folio/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	groups := []routes.Group{
		healthHandler{lc: runtime.Lifecycle}.routes(),
		domain.Documents.Handler(runtime.MaxUploadSize).Routes(),
	}

	routes.Register(mux, groups...)
	runtime.Logger.Debug("routes registered", slog.Any("patterns", routes.Patterns(groups...)))
}
