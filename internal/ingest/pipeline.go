// Package ingest turns uploaded files of unknown provenance into normalized
// plain-text and HTML documents. Content problems never surface as errors:
// every upload yields a viewable document, with failures described in a
// placeholder and flagged in the document metadata.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/folio/pkg/pdfcheck"
	"github.com/JaimeStill/folio/pkg/signature"
)

// Extraction outcomes reported to the Recorder.
const (
	OutcomeOK          = "ok"
	OutcomePlaceholder = "placeholder"
	OutcomePanic       = "panic"
)

// Recorder receives pipeline measurements. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Resolved(docType string, confidence float64)
	Extracted(kind, docType, outcome string, elapsed time.Duration)
	Truncated(stage string)
}

type nopRecorder struct{}

func (nopRecorder) Resolved(string, float64)                          {}
func (nopRecorder) Extracted(string, string, string, time.Duration) {}
func (nopRecorder) Truncated(string)                                 {}

// Pipeline resolves document types and dispatches extraction. It holds no
// per-call state and is safe for concurrent use.
type Pipeline struct {
	resolver  *Resolver
	ceiling   int
	maxRows   int
	preview   int
	recorder  Recorder
	overrides map[Kind]Extractor
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSniffer replaces the content signature table.
func WithSniffer(s signature.Sniffer) Option {
	return func(p *Pipeline) {
		p.resolver = NewResolver(s)
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithExtractor replaces the extractor used for kind.
func WithExtractor(kind Kind, e Extractor) Option {
	return func(p *Pipeline) {
		p.overrides[kind] = e
	}
}

// New creates a Pipeline. Unset limits in cfg fall back to their defaults.
func New(cfg *Config, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver:  NewResolver(nil),
		ceiling:   int(cfg.MaxContentSizeBytes()),
		maxRows:   cfg.MaxSheetRows,
		preview:   cfg.PreviewLength,
		recorder:  nopRecorder{},
		overrides: map[Kind]Extractor{},
		logger:    logger.With("system", "ingest"),
	}
	if p.maxRows <= 0 {
		p.maxRows = DefaultMaxSheetRows
	}
	if p.preview <= 0 {
		p.preview = DefaultPreviewLength
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve determines the document type of an upload without extracting it.
func (p *Pipeline) Resolve(up Upload) Decision {
	return p.resolver.Resolve(up.Filename, up.ContentType, up.Data)
}

// AnalyzeAndExtract resolves the upload's type, extracts it, and derives a
// preview. It always returns a usable document. ctx is used for logging only;
// extraction is bounded by the content ceiling, not cancellation.
func (p *Pipeline) AnalyzeAndExtract(ctx context.Context, up Upload) Analysis {
	start := time.Now()

	decision := p.Resolve(up)
	p.recorder.Resolved(string(decision.Type), decision.Confidence)

	doc := p.run(ctx, up.Data, up.Filename, decision.Type, decision.MimeType, decision.Evidence.Container)
	preview := Preview(decision, doc, p.preview)

	p.logger.InfoContext(ctx, "document analyzed",
		"filename", up.Filename,
		"type", decision.Type,
		"confidence", decision.Confidence,
		"size", len(up.Data),
		"error", doc.HasError(),
		"duration", time.Since(start),
	)

	return Analysis{
		Decision: decision,
		Document: doc,
		Preview:  preview,
	}
}

// Extract dispatches on the normalized mimeType, falling back to the
// resolver's detected type when the MIME type is absent or unmapped.
func (p *Pipeline) Extract(data []byte, mimeType, filename string) Document {
	t, ok := TypeForMime(mimeType)
	if !ok {
		t = p.resolver.Resolve(filename, "", data).Type
	}
	return p.run(context.Background(), data, filename, t, NormalizeMime(mimeType), p.resolver.Sniff(data))
}

// PreviewText summarizes text using the configured preview length.
func (p *Pipeline) PreviewText(text string) string {
	return TextPreview(text, p.preview)
}

// DiagnosePDF validates a PDF buffer and returns remediation suggestions.
func (p *Pipeline) DiagnosePDF(data []byte) pdfcheck.Diagnostics {
	return pdfcheck.Validate(data)
}

// RecoverPDF attempts to salvage a PDF with trailing garbage.
func (p *Pipeline) RecoverPDF(data []byte) pdfcheck.Recovery {
	return pdfcheck.Recover(data)
}

func (p *Pipeline) run(
	ctx context.Context,
	data []byte,
	filename string,
	t Type,
	mimeType string,
	match signature.Match,
) (doc Document) {
	kind := KindOf(t)
	start := time.Now()
	outcome := OutcomeOK

	inputTruncated := len(data) > p.ceiling
	if inputTruncated {
		data = data[:p.ceiling]
		p.recorder.Truncated("input")
	}

	src := Source{
		Data:     data,
		Filename: filename,
		Ext:      Extension(filename),
		Mime:     mimeType,
		Type:     t,
		Match:    match,
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomePanic
			p.logger.ErrorContext(ctx, "extractor panic recovered",
				"kind", kind,
				"filename", filename,
				"panic", r,
			)
			doc = storableDocument(errorDocument(src, mimeType, fmt.Sprint(r)))
		}
		p.recorder.Extracted(kind.String(), string(t), outcome, time.Since(start))
	}()

	res := p.extractor(kind).Extract(src)
	if res.Failed() {
		outcome = OutcomePlaceholder
		p.logger.WarnContext(ctx, "extraction fell back to placeholder",
			"kind", kind,
			"filename", filename,
			"error", res.Err,
		)
	}

	return p.finish(res.Document, inputTruncated)
}

func (p *Pipeline) extractor(kind Kind) Extractor {
	if e, ok := p.overrides[kind]; ok {
		return e
	}

	switch kind {
	case KindWord:
		return wordExtractor{}
	case KindExcel:
		return excelExtractor{maxRows: p.maxRows}
	case KindPowerPoint:
		return powerpointExtractor{}
	case KindPDF:
		return pdfExtractor{}
	case KindText:
		return textExtractor{}
	}
	return textExtractor{}
}

// finish applies the output ceiling and guarantees non-nil metadata.
func (p *Pipeline) finish(doc Document, inputTruncated bool) Document {
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	doc = storableDocument(doc)
	if inputTruncated {
		doc.Metadata["inputTruncated"] = true
	}

	var textCut, htmlCut bool
	doc.PlainText, textCut = truncateText(doc.PlainText, p.ceiling)
	doc.HTML, htmlCut = truncateHTML(doc.HTML, p.ceiling)
	if textCut || htmlCut {
		doc.Metadata["truncated"] = true
		p.recorder.Truncated("output")
	}

	return doc
}
