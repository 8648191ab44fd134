package ingest

import (
	"encoding/binary"
	"errors"
	"strings"
	"unicode/utf16"
)

const (
	fibFlagsOffset  = 0x000A
	fibClxOffset    = 0x01A2
	fibClxLenOffset = 0x01A6
	pieceDescSize   = 8
	maxPieceChars   = 1 << 20
)

var (
	errNoWordStream = errors.New("WordDocument stream not found")
	errEmptyWord    = errors.New("no text found in Word document")
)

var wordFieldCodes = []string{
	"HYPERLINK",
	"PAGEREF",
	"MERGEFORMAT",
	"TOC \\o",
	"TOC \\h",
}

func extractLegacyWord(src Source) Result {
	streams, err := oleStreams(src.Data, "WordDocument", "0Table", "1Table")
	if err != nil {
		return failure(wordFailure.document(src, err), err)
	}

	wordDoc := streams["WordDocument"]
	if len(wordDoc) == 0 {
		return failure(wordFailure.document(src, errNoWordStream), errNoWordStream)
	}

	text := stripFieldCodes(legacyWordText(wordDoc, streams))
	if strings.TrimSpace(text) == "" {
		return failure(wordFailure.document(src, errEmptyWord), errEmptyWord)
	}

	return success(renderWord(src, plainBlocks(text), "doc_legacy"))
}

// legacyWordText reads text through the piece table in the table stream
// named by the FIB, falling back to a scan for printable runs.
func legacyWordText(wordDoc []byte, streams map[string][]byte) string {
	if len(wordDoc) < fibFlagsOffset+2 {
		return ""
	}

	table := "0Table"
	if binary.LittleEndian.Uint16(wordDoc[fibFlagsOffset:])&(1<<9) != 0 {
		table = "1Table"
	}

	if text := pieceTableText(wordDoc, streams[table]); text != "" {
		return text
	}
	return printableRuns(wordDoc)
}

func pieceTableText(wordDoc, tableStream []byte) string {
	if len(tableStream) == 0 || len(wordDoc) < fibClxLenOffset+4 {
		return ""
	}

	fc := int(binary.LittleEndian.Uint32(wordDoc[fibClxOffset:]))
	lcb := int(binary.LittleEndian.Uint32(wordDoc[fibClxLenOffset:]))
	if lcb == 0 || fc < 0 || fc+lcb > len(tableStream) {
		return ""
	}
	clx := tableStream[fc : fc+lcb]

	pos := 0
	for pos < len(clx) && clx[pos] == 0x01 {
		if pos+3 > len(clx) {
			return ""
		}
		pos += 3 + int(binary.LittleEndian.Uint16(clx[pos+1:]))
	}
	if pos+5 > len(clx) || clx[pos] != 0x02 {
		return ""
	}
	pos++

	size := int(binary.LittleEndian.Uint32(clx[pos:]))
	pos += 4
	if size < 12 || pos+size > len(clx) {
		return ""
	}
	plc := clx[pos : pos+size]

	n := (size - 4) / (4 + pieceDescSize)
	cps := (n + 1) * 4

	var b strings.Builder
	for i := range n {
		start := binary.LittleEndian.Uint32(plc[i*4:])
		end := binary.LittleEndian.Uint32(plc[(i+1)*4:])
		if end <= start || end-start > maxPieceChars {
			continue
		}
		count := int(end - start)

		desc := plc[cps+i*pieceDescSize:]
		raw := binary.LittleEndian.Uint32(desc[2:])
		compressed := raw&0x40000000 != 0
		offset := int(raw & 0x3FFFFFFF)

		if compressed {
			offset /= 2
			if offset+count > len(wordDoc) {
				continue
			}
			for _, c := range wordDoc[offset : offset+count] {
				writeWordChar(&b, rune(c))
			}
			continue
		}

		if offset+count*2 > len(wordDoc) {
			continue
		}
		units := make([]uint16, count)
		for j := range units {
			units[j] = binary.LittleEndian.Uint16(wordDoc[offset+j*2:])
		}
		for _, r := range utf16.Decode(units) {
			writeWordChar(&b, r)
		}
	}

	return b.String()
}

func writeWordChar(b *strings.Builder, r rune) {
	switch {
	case r == 0x0D || r == 0x0B:
		b.WriteByte('\n')
	case r == 0x07:
		b.WriteByte('\t')
	case r == 0x09 || r >= 0x20:
		b.WriteRune(r)
	}
}

func printableRuns(data []byte) string {
	var b strings.Builder
	inRun := false
	for _, c := range data {
		switch {
		case c == 0x0D || c == 0x0A:
			b.WriteByte('\n')
			inRun = true
		case c == 0x09 || (c >= 0x20 && c < 0x7F):
			b.WriteByte(c)
			inRun = true
		default:
			if inRun {
				b.WriteByte('\n')
			}
			inRun = false
		}
	}
	return b.String()
}

func stripFieldCodes(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !hasFieldCode(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func hasFieldCode(line string) bool {
	for _, code := range wordFieldCodes {
		if strings.Contains(line, code) {
			return true
		}
	}
	return false
}
