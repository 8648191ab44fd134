package infrastructure_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/infrastructure"
	"github.com/JaimeStill/folio/internal/ingest"
	"github.com/JaimeStill/folio/pkg/database"
	"github.com/JaimeStill/folio/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=foliostore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/foliostore;"

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "folio",
			User:            "folio",
			Password:        "folio",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "folio",
			ConnectionString: azuriteConnString,
			KeyPrefix:        "documents",
		},
		Ingest: ingest.Config{
			MaxContentSize: "1MB",
			MaxSheetRows:   100,
			PreviewLength:  200,
		},
		LogLevel: "info",
		Version:  "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Metrics == nil {
		t.Error("Metrics is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Pipeline == nil {
		t.Error("Pipeline is nil")
	}
}

func TestPipelineReportsToMetrics(t *testing.T) {
	infra, err := infrastructure.NewWithLogger(validConfig(), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewWithLogger() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	infra.Pipeline.AnalyzeAndExtract(context.Background(), ingest.Upload{
		Data:     []byte("hello"),
		Filename: "notes.txt",
	})

	n, err := testutil.GatherAndCount(infra.Metrics.Gatherer(), "folio_ingest_documents_total")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("documents_total series = %d, want 1", n)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := infrastructure.NewLogger(&buf, slog.LevelWarn)

	logger.Info("dropped")
	logger.Warn("kept", "system", "ingest")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "kept" || entry["system"] != "ingest" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.ConnectionString = "not-a-connection-string"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}
