package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JaimeStill/folio/pkg/formatting"
)

func truncationMessage(shown, total int) string {
	return fmt.Sprintf(
		"[content truncated: showing %s of %s]",
		formatting.FormatBytes(int64(shown), 1),
		formatting.FormatBytes(int64(total), 1),
	)
}

// truncateText cuts s at a rune boundary no later than limit bytes and
// appends a truncation marker.
func truncateText(s string, limit int) (string, bool) {
	if len(s) <= limit {
		return s, false
	}
	cut := runeBoundary(s, limit)
	return s[:cut] + "\n\n" + truncationMessage(cut, len(s)), true
}

// truncateHTML cuts s before the last tag that starts within limit bytes so
// no tag is split, then appends a truncation notice block.
func truncateHTML(s string, limit int) (string, bool) {
	if len(s) <= limit {
		return s, false
	}
	cut := strings.LastIndexByte(s[:limit], '<')
	if cut <= 0 {
		cut = runeBoundary(s, limit)
	}
	notice := fmt.Sprintf(truncationNotice, escape(truncationMessage(cut, len(s))))
	return s[:cut] + notice, true
}

func runeBoundary(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return cut
}
