package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/JaimeStill/folio/internal/ingest"
	"github.com/JaimeStill/folio/pkg/formatting"
)

// AnalyzeCmd resolves and extracts each file.
type AnalyzeCmd struct {
	Files          []string        `arg:"" type:"existingfile" help:"Files to analyze."`
	MaxContentSize formatting.Size `default:"10MB" help:"Content ceiling passed to the extractors."`
	ContentType    string          `help:"Declared MIME type. Defaults to the type implied by each extension."`
	HTML           bool            `help:"Print the extracted HTML."`
	JSON           bool            `help:"Emit one JSON object per file."`
}

func (c *AnalyzeCmd) Run(out io.Writer, logger *slog.Logger) error {
	cfg := &ingest.Config{
		MaxContentSize: strconv.FormatInt(c.MaxContentSize.Bytes(), 10),
	}
	if err := cfg.Finalize(nil); err != nil {
		return fmt.Errorf("ingest config: %w", err)
	}
	pipeline := ingest.New(cfg, logger)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	for _, path := range c.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		name := filepath.Base(path)
		declared := c.ContentType
		if declared == "" {
			declared = mime.TypeByExtension(filepath.Ext(name))
		}

		result := pipeline.AnalyzeAndExtract(context.Background(), ingest.Upload{
			Data:        data,
			Filename:    name,
			ContentType: declared,
		})

		if c.JSON {
			if err := enc.Encode(report(name, result, c.HTML)); err != nil {
				return err
			}
			continue
		}
		printAnalysis(out, name, result, c.HTML)
	}
	return nil
}

type analysisReport struct {
	File       string         `json:"file"`
	Type       ingest.Type    `json:"detected_type"`
	MimeType   string         `json:"mime_type"`
	Confidence float64        `json:"confidence"`
	Readable   bool           `json:"is_readable"`
	Preview    string         `json:"preview"`
	Metadata   map[string]any `json:"metadata"`
	HTML       string         `json:"html,omitempty"`
}

func report(name string, a ingest.Analysis, withHTML bool) analysisReport {
	r := analysisReport{
		File:       name,
		Type:       a.Decision.Type,
		MimeType:   a.Decision.MimeType,
		Confidence: a.Decision.Confidence,
		Readable:   a.Decision.IsReadable,
		Preview:    a.Preview,
		Metadata:   a.Document.Metadata,
	}
	if withHTML {
		r.HTML = a.Document.HTML
	}
	return r
}

func printAnalysis(out io.Writer, name string, a ingest.Analysis, withHTML bool) {
	fmt.Fprintf(out, "%s\n", name)
	fmt.Fprintf(out, "  type:       %s (%s)\n", a.Decision.Type, a.Decision.MimeType)
	fmt.Fprintf(out, "  confidence: %.2f\n", a.Decision.Confidence)
	fmt.Fprintf(out, "  readable:   %v\n", a.Decision.IsReadable)
	if a.Document.HasError() {
		fmt.Fprintf(out, "  error:      %v\n", a.Document.Metadata["errorMessage"])
	}
	fmt.Fprintf(out, "  preview:    %s\n", a.Preview)
	if withHTML {
		fmt.Fprintf(out, "%s\n", a.Document.HTML)
	}
}
