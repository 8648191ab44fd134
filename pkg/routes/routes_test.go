package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/folio/pkg/routes"
)

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

func documentGroup() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: status(http.StatusOK)},
			{Method: "GET", Pattern: "/{id}", Handler: status(http.StatusOK)},
			{Method: "DELETE", Pattern: "/{id}", Handler: status(http.StatusNoContent)},
		},
		Children: []routes.Group{
			{
				Prefix: "/pdf",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/recover", Handler: status(http.StatusOK)},
				},
			},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, documentGroup())

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"list", "GET", "/documents", http.StatusOK},
		{"find", "GET", "/documents/123", http.StatusOK},
		{"delete", "DELETE", "/documents/123", http.StatusNoContent},
		{"nested", "POST", "/documents/pdf/recover", http.StatusOK},
		{"wrong method", "PUT", "/documents/123", http.StatusMethodNotAllowed},
		{"unknown", "GET", "/folders", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPatterns(t *testing.T) {
	got := routes.Patterns(documentGroup(), routes.Group{
		Routes: []routes.Route{{Pattern: "", Handler: status(http.StatusOK)}},
	})

	want := []string{
		"GET /documents",
		"GET /documents/{id}",
		"DELETE /documents/{id}",
		"POST /documents/pdf/recover",
		"/",
	}

	if !slices.Equal(got, want) {
		t.Errorf("Patterns() = %v, want %v", got, want)
	}
}
