package ingest_test

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/JaimeStill/folio/internal/ingest"
)

type extraction struct {
	kind    string
	docType string
	outcome string
}

type fakeRecorder struct {
	mu          sync.Mutex
	resolved    []string
	extractions []extraction
	truncations []string
}

func (r *fakeRecorder) Resolved(docType string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = append(r.resolved, docType)
}

func (r *fakeRecorder) Extracted(kind, docType, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractions = append(r.extractions, extraction{kind, docType, outcome})
}

func (r *fakeRecorder) Truncated(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.truncations = append(r.truncations, stage)
}

func (r *fakeRecorder) last() extraction {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.extractions) == 0 {
		return extraction{}
	}
	return r.extractions[len(r.extractions)-1]
}

type panicExtractor struct{}

func (panicExtractor) Extract(ingest.Source) ingest.Result {
	panic("boom")
}

type staticExtractor struct {
	doc ingest.Document
}

func (e staticExtractor) Extract(ingest.Source) ingest.Result {
	return ingest.Result{Document: e.doc}
}

func TestAnalyzeAndExtractTotality(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	names := []string{
		"a.pdf", "a.docx", "a.doc", "a.odt", "a.xlsx", "a.xls", "a.pptx", "a.ppt",
		"a.txt", "a.rtf", "a.html", "a.go", "a.jpg", "a.svg", "a", "",
	}

	var buffers [][]byte
	for _, size := range []int{0, 1, 7, 64, 512, 4096} {
		b := make([]byte, size)
		for i := range b {
			b[i] = byte(rng.UintN(256))
		}
		buffers = append(buffers, b)
	}

	valid := [][]byte{sampleDocx(t), sampleXlsx(t), samplePptx(t), buildPDF("totality")}
	for _, v := range valid {
		for _, frac := range []int{2, 3, 5} {
			buffers = append(buffers, v[:len(v)/frac])
		}
		buffers = append(buffers, v)
	}
	for _, prefix := range [][]byte{[]byte("%PDF-"), []byte("PK\x03\x04"), oleBytes[:8], jpegBytes[:4]} {
		buffers = append(buffers, append(bytes.Clone(prefix), buffers[4]...))
	}

	p := newPipeline(t, nil)

	for _, data := range buffers {
		for _, name := range names {
			for _, declared := range []string{"", ingest.MimePDF, ingest.MimeDocx, "garbage/;;"} {
				a := p.AnalyzeAndExtract(context.Background(), ingest.Upload{
					Data:        data,
					Filename:    name,
					ContentType: declared,
				})
				if a.Document.Metadata == nil {
					t.Fatalf("nil metadata for %q (%d bytes)", name, len(data))
				}
				if a.Decision.Confidence < 0 || a.Decision.Confidence > 1 {
					t.Fatalf("confidence out of range: %v", a.Decision.Confidence)
				}
				if a.Document.HasError() && a.Document.PlainText == "" {
					t.Fatalf("error document without diagnostic text for %q", name)
				}
			}
		}
	}
}

func TestPanicBoundary(t *testing.T) {
	rec := &fakeRecorder{}
	p := newPipeline(t, nil,
		ingest.WithExtractor(ingest.KindWord, panicExtractor{}),
		ingest.WithRecorder(rec),
	)

	a := analyze(t, p, "memo.docx", ingest.MimeDocx, sampleDocx(t))

	if !a.Document.HasError() {
		t.Fatal("expected error document")
	}

	meta := a.Document.Metadata
	if meta["type"] != "error" {
		t.Errorf("type: got %v, want error", meta["type"])
	}
	if meta["errorMessage"] != "boom" {
		t.Errorf("errorMessage: got %v", meta["errorMessage"])
	}
	if meta["mimeType"] != ingest.MimeDocx {
		t.Errorf("mimeType: got %v", meta["mimeType"])
	}

	assertContains(t, "text", a.Document.PlainText, "Could not extract content from memo.docx", "Error details: boom")
	assertContains(t, "html", a.Document.HTML, `<div class="error-document">`, "<code>boom</code>")

	if got := rec.last(); got.outcome != ingest.OutcomePanic || got.kind != "word" {
		t.Errorf("recorded: got %+v", got)
	}
	if a.Preview != "Could not extract content from memo.docx" {
		t.Errorf("preview: got %q", a.Preview)
	}
}

func TestDispatchEveryKind(t *testing.T) {
	samples := map[ingest.Kind]struct {
		filename string
		data     []byte
	}{
		ingest.KindText:       {"notes.txt", []byte("hello")},
		ingest.KindWord:       {"memo.docx", sampleDocx(t)},
		ingest.KindExcel:      {"report.xlsx", sampleXlsx(t)},
		ingest.KindPowerPoint: {"deck.pptx", samplePptx(t)},
		ingest.KindPDF:        {"brief.pdf", buildPDF("kinds")},
	}

	for _, kind := range ingest.Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			sample, ok := samples[kind]
			if !ok {
				t.Fatalf("no sample for kind %s", kind)
			}

			rec := &fakeRecorder{}
			p := newPipeline(t, nil, ingest.WithRecorder(rec))
			a := analyze(t, p, sample.filename, "", sample.data)

			got := rec.last()
			if got.kind != kind.String() {
				t.Errorf("kind: got %s, want %s", got.kind, kind)
			}
			if got.outcome != ingest.OutcomeOK {
				t.Errorf("outcome: got %s, document: %s", got.outcome, a.Document.PlainText)
			}
		})
	}
}

func TestPlaceholderOutcome(t *testing.T) {
	rec := &fakeRecorder{}
	p := newPipeline(t, nil, ingest.WithRecorder(rec))

	analyze(t, p, "deck.pptx", "", zipBytes)

	if got := rec.last(); got.outcome != ingest.OutcomePlaceholder {
		t.Errorf("outcome: got %s, want placeholder", got.outcome)
	}
	if len(rec.resolved) != 1 || rec.resolved[0] != string(ingest.TypePowerPoint) {
		t.Errorf("resolved: got %v", rec.resolved)
	}
}

func TestExtractDispatch(t *testing.T) {
	p := newPipeline(t, nil)

	tests := []struct {
		name     string
		data     []byte
		mime     string
		filename string
		wantType string
		wantErr  bool
	}{
		{"mime selects word", sampleDocx(t), ingest.MimeDocx + "; charset=binary", "upload.bin", "word", false},
		{"resolver fallback", buildPDF("dispatch"), "", "upload", "pdf", false},
		{"unmapped mime falls back", samplePptx(t), "application/x-unknown", "deck.pptx", "powerpoint", false},
		{"mime forces text on binary", sampleDocx(t), ingest.MimeText, "memo.docx", "text", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := p.Extract(tt.data, tt.mime, tt.filename)

			if doc.HasError() != tt.wantErr {
				t.Fatalf("error: got %v, want %v (%s)", doc.HasError(), tt.wantErr, doc.PlainText)
			}
			if doc.Metadata["type"] != tt.wantType {
				t.Errorf("type: got %v, want %s", doc.Metadata["type"], tt.wantType)
			}
		})
	}
}

func TestContentCeiling(t *testing.T) {
	cfg := &ingest.Config{MaxContentSize: "1KB"}

	t.Run("input truncated", func(t *testing.T) {
		rec := &fakeRecorder{}
		p := newPipeline(t, cfg, ingest.WithRecorder(rec))

		a := analyze(t, p, "long.txt", "", bytes.Repeat([]byte("a"), 5000))

		if a.Document.Metadata["inputTruncated"] != true {
			t.Error("inputTruncated not set")
		}
		if len(a.Document.PlainText) != 1024 {
			t.Errorf("text length: got %d, want 1024", len(a.Document.PlainText))
		}
		if rec.truncations[0] != "input" {
			t.Errorf("truncations: got %v", rec.truncations)
		}
	})

	t.Run("output truncated at rune boundary", func(t *testing.T) {
		long := strings.Repeat("€", 2000)
		p := newPipeline(t, cfg, ingest.WithExtractor(ingest.KindText, staticExtractor{
			doc: ingest.Document{PlainText: long, HTML: strings.Repeat("<p>abcdefgh</p>", 300)},
		}))

		doc := p.Extract([]byte("short"), ingest.MimeText, "euro.txt")

		if doc.Metadata["truncated"] != true {
			t.Fatal("truncated not set")
		}
		if !utf8.ValidString(doc.PlainText) {
			t.Error("truncated text is not valid UTF-8")
		}
		body, marker, ok := strings.Cut(doc.PlainText, "\n\n")
		if !ok {
			t.Fatalf("missing truncation marker: %q", doc.PlainText[len(doc.PlainText)-80:])
		}
		if len(body) != 1023 {
			t.Errorf("body length: got %d, want 1023", len(body))
		}
		if !strings.HasPrefix(marker, "[content truncated: showing 1023.0 B of 5.9 KB]") {
			t.Errorf("marker: got %q", marker)
		}

		head, _, ok := strings.Cut(doc.HTML, `<div class="truncation-notice"`)
		if !ok {
			t.Fatal("missing html truncation notice")
		}
		if !strings.HasSuffix(head, "</p>") {
			t.Errorf("html cut inside a tag: ...%s", head[len(head)-20:])
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		p := newPipeline(t, cfg)
		data := bytes.Repeat([]byte("line of text\n"), 500)

		first := analyze(t, p, "big.txt", "", data)
		second := analyze(t, p, "big.txt", "", data)

		if first.Document.PlainText != second.Document.PlainText {
			t.Error("plain text differs between runs")
		}
		if first.Document.HTML != second.Document.HTML {
			t.Error("html differs between runs")
		}
		if first.Preview != second.Preview {
			t.Error("preview differs between runs")
		}
	})
}

func TestConcurrentAnalysis(t *testing.T) {
	p := newPipeline(t, nil)
	inputs := []struct {
		name string
		data []byte
	}{
		{"memo.docx", sampleDocx(t)},
		{"report.xlsx", sampleXlsx(t)},
		{"deck.pptx", samplePptx(t)},
		{"brief.pdf", buildPDF("parallel")},
		{"notes.txt", []byte("hello")},
	}

	want := make([]string, len(inputs))
	for i, in := range inputs {
		want[i] = analyze(t, p, in.name, "", in.data).Document.PlainText
	}

	var wg sync.WaitGroup
	for range 4 {
		for i, in := range inputs {
			wg.Go(func() {
				got := p.AnalyzeAndExtract(context.Background(), ingest.Upload{Data: in.data, Filename: in.name})
				if got.Document.PlainText != want[i] {
					t.Errorf("%s: concurrent result differs", in.name)
				}
			})
		}
	}
	wg.Wait()
}

func TestDiagnoseAndRecover(t *testing.T) {
	p := newPipeline(t, nil)
	data := append(buildPDF("diag"), bytes.Repeat([]byte("#"), 2048)...)

	diag := p.DiagnosePDF(data)
	if !diag.HasValidHeader || diag.HasValidStructure {
		t.Errorf("diagnostics: header=%v structure=%v", diag.HasValidHeader, diag.HasValidStructure)
	}

	rec := p.RecoverPDF(data)
	if !rec.Recovered {
		t.Fatalf("recover failed: %s", rec.Message)
	}
	if !p.DiagnosePDF(rec.Data).HasValidStructure {
		t.Error("recovered buffer still lacks a trailer")
	}
}
