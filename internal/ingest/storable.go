package ingest

import (
	"strings"
	"unicode/utf8"
)

// storable returns s as valid UTF-8 with NUL and the other C0 controls
// removed, keeping tab, newline, and carriage return. PostgreSQL rejects
// NUL in text and jsonb values.
func storable(s string) string {
	if clean(s) {
		return s
	}
	s = strings.ToValidUTF8(s, "\uFFFD")
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func clean(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 && c != '\t' && c != '\n' && c != '\r' {
			return false
		}
	}
	return utf8.ValidString(s)
}

// storableDocument applies storable to both renditions and to top-level
// string metadata values.
func storableDocument(doc Document) Document {
	doc.PlainText = storable(doc.PlainText)
	doc.HTML = storable(doc.HTML)
	for k, v := range doc.Metadata {
		if s, ok := v.(string); ok {
			doc.Metadata[k] = storable(s)
		}
	}
	return doc
}
