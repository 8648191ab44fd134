package ingest

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/folio/pkg/formatting"
)

var genericCauses = []string{
	"the file is corrupted or was only partially uploaded",
	"the file format is not supported",
	"the file is password protected",
}

// placeholder describes an extractor-specific failure document.
type placeholder struct {
	heading string
	causes  []string
	hints   []string
	docType Type
	format  string
	class   string
	style   string
}

func (p placeholder) document(src Source, err error) Document {
	size := formatting.FormatBytes(int64(len(src.Data)), 1)

	var text strings.Builder
	fmt.Fprintf(&text, "%s: %s\n\nPossible causes:\n", p.heading, src.Filename)
	for _, c := range p.causes {
		fmt.Fprintf(&text, "- %s\n", c)
	}
	fmt.Fprintf(&text, "\nFile size: %s\nError: %v\n", size, err)
	if len(p.hints) > 0 {
		text.WriteString("\nWhat you can do:\n")
		for _, h := range p.hints {
			fmt.Fprintf(&text, "- %s\n", h)
		}
	}

	body := fmt.Sprintf(
		"<h3>%s</h3>\n<p><strong>%s</strong></p>\n<p>Possible causes:</p>\n%s\n<p>File size: %s</p>\n<p>Error: <code>%s</code></p>\n",
		escape(p.heading),
		escape(src.Filename),
		listItems(p.causes),
		escape(size),
		escape(err.Error()),
	)
	if len(p.hints) > 0 {
		body += "<p>What you can do:</p>\n" + listItems(p.hints) + "\n"
	}

	return Document{
		PlainText: text.String(),
		HTML:      wrap(p.class, p.style, body),
		Metadata: map[string]any{
			"title":  Stem(src.Filename),
			"type":   string(p.docType),
			"format": p.format,
		},
	}
}

// errorDocument is the last-resort document built by the pipeline when an
// extractor panics.
func errorDocument(src Source, mimeType string, detail string) Document {
	size := formatting.FormatBytes(int64(len(src.Data)), 1)
	declared := mimeType
	if declared == "" {
		declared = "unknown"
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Could not extract content from %s\n\nPossible causes:\n", src.Filename)
	for _, c := range genericCauses {
		fmt.Fprintf(&text, "- %s\n", c)
	}
	fmt.Fprintf(&text, "\nFile size: %s\nType: %s\nError details: %s\n", size, declared, detail)

	body := fmt.Sprintf(
		"<h3>Could not extract content</h3>\n<div class=\"error-content\">\n<p><strong>%s</strong></p>\n<p>Possible causes:</p>\n%s\n<p>File size: %s<br>Type: %s</p>\n<p>Error details: <code>%s</code></p>\n<p>Try re-exporting the file from its source application and uploading it again.</p>\n</div>\n",
		escape(src.Filename),
		listItems(genericCauses),
		escape(size),
		escape(declared),
		escape(detail),
	)

	return Document{
		PlainText: text.String(),
		HTML:      wrap("error-document", errorStyle, body),
		Metadata: map[string]any{
			"title":        Stem(src.Filename),
			"type":         "error",
			"error":        true,
			"errorMessage": detail,
			"fileSize":     len(src.Data),
			"mimeType":     declared,
		},
	}
}
