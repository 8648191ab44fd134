package api

import (
	"net/http"

	"github.com/JaimeStill/folio/pkg/handlers"
	"github.com/JaimeStill/folio/pkg/lifecycle"
	"github.com/JaimeStill/folio/pkg/routes"
)

type healthHandler struct {
	lc *lifecycle.Coordinator
}

func (h healthHandler) routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/healthz", Handler: h.live},
			{Method: "GET", Pattern: "/readyz", Handler: h.ready},
		},
	}
}

func (h healthHandler) live(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h healthHandler) ready(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":     "ready",
		"subsystems": h.lc.Status(),
	}

	if !h.lc.Ready() {
		body["status"] = "not ready"
		handlers.RespondJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, body)
}
