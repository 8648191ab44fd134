package ingest

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/JaimeStill/folio/pkg/pdfcheck"
)

const (
	causePassword  = "the PDF is password protected"
	causeCorrupt   = "the file is corrupted or incomplete"
	causeImageOnly = "the PDF contains only scanned images without a text layer"
	causeVersion   = "the PDF uses an unsupported version or feature"
)

var blankLines = regexp.MustCompile(`\n\s*\n`)

type pdfExtractor struct{}

func (pdfExtractor) Extract(src Source) (res Result) {
	diag := pdfcheck.Validate(src.Data)

	data := src.Data
	var recovered bool
	if diag.HasValidHeader && !diag.HasValidStructure {
		if rec := pdfcheck.Recover(data); rec.Recovered {
			data = rec.Data
			recovered = true
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("pdf parser panic: %v", r)
			res = failure(pdfPlaceholder(src, diag, err), err)
		}
	}()

	text, pages, err := readPDF(data)
	if err != nil {
		if diag.IsPasswordProtected {
			err = fmt.Errorf("%s: %w", diag.Error, err)
		}
		return failure(pdfPlaceholder(src, diag, err), err)
	}
	if pages == 0 {
		pages = diag.PageCount
	}

	doc := renderPDF(src, text, pages)
	doc.Metadata["version"] = diag.Version
	doc.Metadata["pdf"] = diag
	if recovered {
		doc.Metadata["recovered"] = true
	}
	return success(doc)
}

func readPDF(data []byte) (string, int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	pages := r.NumPage()
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", pages, fmt.Errorf("read page %d: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n"), pages, nil
}

func renderPDF(src Source, text string, pages int) Document {
	chars := utf8.RuneCountInString(text)

	var body strings.Builder
	fmt.Fprintf(&body,
		"<div class=\"pdf-info\"><strong>%s</strong> &middot; Pages: %d &middot; Characters: %d</div>\n<div class=\"pdf-page\">\n",
		escape(src.Filename), pages, chars,
	)

	meta := map[string]any{
		"title":      Stem(src.Filename),
		"type":       string(TypePDF),
		"format":     "pdf",
		"pages":      pages,
		"characters": chars,
	}

	if text == "" {
		body.WriteString("<p><em>The PDF contains no readable text. It may consist of scanned images.</em></p>\n")
		meta["textless"] = true
	}

	for _, para := range blankLines.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		fmt.Fprintf(&body, "<p>%s</p>\n", strings.ReplaceAll(escape(para), "\n", "<br>"))
	}
	body.WriteString("</div>\n")

	return Document{
		PlainText: text,
		HTML:      wrap("pdf-document", pdfStyle, body.String()),
		Metadata:  meta,
	}
}

// pdfPlaceholder lists likely causes with the validator's findings first.
func pdfPlaceholder(src Source, diag pdfcheck.Diagnostics, err error) Document {
	var causes []string
	if diag.IsPasswordProtected {
		causes = append(causes, causePassword)
	}
	if !diag.HasValidHeader || !diag.HasValidStructure {
		causes = append(causes, causeCorrupt)
	}
	for _, c := range []string{causePassword, causeCorrupt, causeImageOnly, causeVersion} {
		if !slices.Contains(causes, c) {
			causes = append(causes, c)
		}
	}

	heading := "Could not extract text from the PDF"
	if diag.IsPasswordProtected {
		heading = "The PDF is password protected"
	}

	ph := placeholder{
		heading: heading,
		causes:  causes,
		hints:   diag.Suggestions,
		docType: TypePDF,
		format:  "pdf",
		class:   "pdf-error",
		style:   pdfStyle,
	}

	doc := ph.document(src, err)
	doc.Metadata["pages"] = diag.PageCount
	doc.Metadata["passwordProtected"] = diag.IsPasswordProtected
	doc.Metadata["pdf"] = diag
	return doc
}
