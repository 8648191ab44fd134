package documents_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/folio/internal/documents"
	"github.com/JaimeStill/folio/internal/ingest"
	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/query"
	"github.com/JaimeStill/folio/pkg/storage"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", documents.ErrNotFound, http.StatusNotFound},
		{"duplicate", documents.ErrDuplicate, http.StatusConflict},
		{"file too large", documents.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"invalid file", documents.ErrInvalidFile, http.StatusBadRequest},
		{"invalid id", documents.ErrInvalidID, http.StatusBadRequest},
		{"missing owner", documents.ErrMissingOwner, http.StatusBadRequest},
		{"empty update", documents.ErrInvalidUpdate, http.StatusBadRequest},
		{"constraint violation", documents.ErrConstraint, http.StatusBadRequest},
		{"recovery failed", documents.ErrRecoveryFailed, http.StatusUnprocessableEntity},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", documents.ErrNotFound), http.StatusNotFound},
		{"wrapped recovery", fmt.Errorf("%w: no header", documents.ErrRecoveryFailed), http.StatusUnprocessableEntity},
		{"storage unavailable", fmt.Errorf("upload blob k: %w", storage.ErrUnavailable), http.StatusServiceUnavailable},
		{"storage key", storage.ErrInvalidKey, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := documents.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		values := url.Values{
			"owner_id":       {"alice"},
			"detected_type":  {"pdf"},
			"has_error":      {"true"},
			"filename":       {"report"},
			"min_confidence": {"0.9"},
		}

		f := documents.FiltersFromQuery(values)

		if f.OwnerID == nil || *f.OwnerID != "alice" {
			t.Errorf("OwnerID = %v, want alice", f.OwnerID)
		}
		if f.DetectedType == nil || *f.DetectedType != "pdf" {
			t.Errorf("DetectedType = %v, want pdf", f.DetectedType)
		}
		if f.HasError == nil || !*f.HasError {
			t.Errorf("HasError = %v, want true", f.HasError)
		}
		if f.Filename == nil || *f.Filename != "report" {
			t.Errorf("Filename = %v, want report", f.Filename)
		}
		if f.MinConfidence == nil || *f.MinConfidence != 0.9 {
			t.Errorf("MinConfidence = %v, want 0.9", f.MinConfidence)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := documents.FiltersFromQuery(url.Values{})

		if f.OwnerID != nil || f.DetectedType != nil || f.HasError != nil || f.Filename != nil || f.MinConfidence != nil {
			t.Errorf("filters = %+v, want all nil", f)
		}
	})

	t.Run("malformed values ignored", func(t *testing.T) {
		f := documents.FiltersFromQuery(url.Values{
			"has_error":      {"maybe"},
			"min_confidence": {"high"},
		})

		if f.HasError != nil {
			t.Errorf("HasError = %v, want nil", f.HasError)
		}
		if f.MinConfidence != nil {
			t.Errorf("MinConfidence = %v, want nil", f.MinConfidence)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	projection := query.
		NewProjectionMap("public", "documents", "d").
		Project("owner_id", "OwnerID").
		Project("detected_type", "DetectedType").
		Project("has_error", "HasError").
		Project("filename", "Filename").
		Project("confidence", "Confidence")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(projection)
		documents.Filters{}.Apply(b)
		sql, args := b.Build()

		wantSQL := "SELECT d.owner_id, d.detected_type, d.has_error, d.filename, d.confidence FROM public.documents d"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("all filters combine with AND", func(t *testing.T) {
		b := query.NewBuilder(projection)
		documents.Filters{
			OwnerID:       ptr("alice"),
			DetectedType:  ptr("excel"),
			HasError:      ptr(false),
			Filename:      ptr("q3"),
			MinConfidence: ptr(0.8),
		}.Apply(b)
		sql, args := b.Build()

		want := " WHERE d.owner_id = $1 AND d.detected_type = $2 AND d.has_error = $3 AND d.filename ILIKE $4 AND d.confidence >= $5"
		if !strings.HasSuffix(sql, want) {
			t.Errorf("sql = %q, want suffix %q", sql, want)
		}
		if len(args) != 5 {
			t.Fatalf("args length = %d, want 5", len(args))
		}
		if args[3] != "%q3%" {
			t.Errorf("args[3] = %v, want %%q3%%", args[3])
		}
	})
}

func TestNewBatchResponse(t *testing.T) {
	doc := sampleDoc()
	results := []documents.BatchResult{
		{Filename: "a.pdf", Document: &doc},
		{Filename: "b.bin", Error: "upload document blob: boom"},
		{Filename: "c.pdf", Document: &doc},
	}

	resp := documents.NewBatchResponse(results)

	if len(resp.Uploaded) != 2 {
		t.Errorf("uploaded = %d, want 2", len(resp.Uploaded))
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Filename != "b.bin" {
		t.Errorf("errors = %+v, want [b.bin]", resp.Errors)
	}

	empty := documents.NewBatchResponse(nil)
	if empty.Uploaded == nil || empty.Errors == nil {
		t.Error("empty response should carry non-nil slices")
	}
}

func newSystem(t *testing.T) documents.System {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	cfg := &ingest.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize ingest config: %v", err)
	}
	return documents.New(nil, nil, ingest.New(cfg, logger), logger, documents.Config{
		Pagination: pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	})
}

func TestSystemAnalyze(t *testing.T) {
	sys := newSystem(t)

	res := sys.Analyze(context.Background(), documents.CreateCommand{
		Data:     []byte("hello"),
		Filename: "notes.txt",
	})

	if res.Decision.Type != ingest.TypeText {
		t.Errorf("type = %s, want text", res.Decision.Type)
	}
	if res.TextLength != len("hello") {
		t.Errorf("text length = %d, want 5", res.TextLength)
	}
	if res.HTMLLength == 0 {
		t.Error("html length should be positive")
	}
	if res.HasError {
		t.Error("plain text should not be an error document")
	}
	if res.Preview != "hello" {
		t.Errorf("preview = %q, want hello", res.Preview)
	}
}

func TestSystemCreateRequiresOwner(t *testing.T) {
	sys := newSystem(t)

	_, err := sys.Create(context.Background(), documents.CreateCommand{
		OwnerID:  "  ",
		Data:     []byte("hello"),
		Filename: "notes.txt",
	})
	if !errors.Is(err, documents.ErrMissingOwner) {
		t.Errorf("err = %v, want ErrMissingOwner", err)
	}
}

func TestSystemUpdateRequiresField(t *testing.T) {
	sys := newSystem(t)

	_, err := sys.Update(context.Background(), sampleDoc().ID, documents.UpdateCommand{})
	if !errors.Is(err, documents.ErrInvalidUpdate) {
		t.Errorf("err = %v, want ErrInvalidUpdate", err)
	}
}

func TestSystemRecover(t *testing.T) {
	sys := newSystem(t)

	body := "%PDF-1.4\n" + strings.Repeat("x", 120) + "\n%%EOF\n"
	garbage := strings.Repeat("G", 2048)

	t.Run("trailing garbage truncated", func(t *testing.T) {
		data, err := sys.Recover([]byte(body + garbage))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != body {
			t.Errorf("recovered %d bytes, want %d ending at the marker", len(data), len(body))
		}
	})

	t.Run("not a pdf", func(t *testing.T) {
		_, err := sys.Recover([]byte(strings.Repeat("z", 200)))
		if !errors.Is(err, documents.ErrRecoveryFailed) {
			t.Errorf("err = %v, want ErrRecoveryFailed", err)
		}
	})
}

func TestSystemDiagnose(t *testing.T) {
	sys := newSystem(t)

	diag := sys.Diagnose([]byte("%PDF-1.4\n" + strings.Repeat("x", 200)))
	if diag.IsValid {
		t.Error("pdf without trailer should be invalid")
	}
	if !diag.HasValidHeader {
		t.Error("header should be valid")
	}
	if diag.HasValidStructure {
		t.Error("structure should be invalid")
	}
}
