package ingest

import (
	"fmt"
	"strings"
)

const previewRows = 5

// Preview derives a short summary of an extracted document for listings.
// The result is at most limit runes plus a trailing ellipsis when cut.
func Preview(decision Decision, doc Document, limit int) string {
	if limit <= 0 {
		limit = DefaultPreviewLength
	}

	if doc.HasError() {
		return clip(firstLine(doc.PlainText), limit)
	}

	text := normalizeSpace(doc.PlainText)

	switch decision.Type {
	case TypePDF:
		summary := fmt.Sprintf("PDF document, %d pages", metaInt(doc.Metadata, "pages"))
		if text != "" {
			summary += ": " + text
		}
		return clip(summary, limit)
	case TypeExcel:
		return clip(sheetRows(doc.PlainText), limit)
	case TypePowerPoint:
		return clip(fmt.Sprintf("Presentation with %d slides", metaInt(doc.Metadata, "slides")), limit)
	case TypeImage:
		return "Image file - open to view"
	}

	return TextPreview(text, limit)
}

// TextPreview summarizes edited or plain content that has no detected type.
func TextPreview(text string, limit int) string {
	if limit <= 0 {
		limit = DefaultPreviewLength
	}
	text = normalizeSpace(text)
	if text == "" {
		return "Empty document"
	}
	return clip(text, limit)
}

func sheetRows(text string) string {
	var rows []string
	for line := range strings.SplitSeq(text, "\n") {
		if strings.HasPrefix(line, "--- Sheet:") {
			continue
		}
		if row := normalizeSpace(line); row != "" {
			rows = append(rows, row)
		}
		if len(rows) == previewRows {
			break
		}
	}
	if len(rows) == 0 {
		return "Empty spreadsheet"
	}
	return strings.Join(rows, ", ")
}

func firstLine(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
