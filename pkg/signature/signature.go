// Package signature identifies the container family of a byte buffer from its
// leading bytes, independent of any filename or declared content type.
package signature

import (
	"bytes"
	"unicode"
	"unicode/utf8"
)

var bom = []byte("\xEF\xBB\xBF")

// PeekSize is the maximum number of leading bytes a Sniffer inspects.
const PeekSize = 1024

// Family is the broad container family of a buffer.
type Family string

const (
	FamilyPDF     Family = "pdf"
	FamilyZIP     Family = "zip"
	FamilyOLE     Family = "ole"
	FamilyImage   Family = "image"
	FamilyText    Family = "text"
	FamilyUnknown Family = "unknown"
)

// Match is the result of sniffing a buffer. Format narrows the family
// (jpeg, png, gif for images).
type Match struct {
	Family Family `json:"family"`
	Format string `json:"format,omitempty"`
}

// Strong reports whether the match came from a magic number rather than
// the printable-text heuristic.
func (m Match) Strong() bool {
	return m.Family != FamilyText && m.Family != FamilyUnknown
}

// Signature is a byte prefix identifying a container family.
type Signature struct {
	Prefix []byte
	Family Family
	Format string
}

// Sniffer inspects at most PeekSize leading bytes and reports a Match.
// Implementations never panic; no match is reported as FamilyUnknown.
type Sniffer interface {
	Sniff(data []byte) Match
}

// DefaultTable returns the built-in signature table.
func DefaultTable() []Signature {
	return []Signature{
		{Prefix: []byte("%PDF-"), Family: FamilyPDF, Format: "pdf"},
		{Prefix: []byte("PK\x03\x04"), Family: FamilyZIP, Format: "zip"},
		{Prefix: []byte("PK\x05\x06"), Family: FamilyZIP, Format: "zip"},
		{Prefix: []byte("PK\x07\x08"), Family: FamilyZIP, Format: "zip"},
		{Prefix: []byte("\xD0\xCF\x11\xE0"), Family: FamilyOLE, Format: "ole"},
		{Prefix: []byte("\xFF\xD8\xFF"), Family: FamilyImage, Format: "jpeg"},
		{Prefix: []byte("\x89PNG"), Family: FamilyImage, Format: "png"},
		{Prefix: []byte("GIF8"), Family: FamilyImage, Format: "gif"},
	}
}

type table struct {
	signatures []Signature
}

// New creates a Sniffer over the given signatures, checked in order.
// With no signatures the DefaultTable is used.
func New(signatures ...Signature) Sniffer {
	if len(signatures) == 0 {
		signatures = DefaultTable()
	}
	return &table{signatures: signatures}
}

func (t *table) Sniff(data []byte) Match {
	head := Head(data)

	for _, s := range t.signatures {
		if len(s.Prefix) > 0 && bytes.HasPrefix(head, s.Prefix) {
			return Match{Family: s.Family, Format: s.Format}
		}
	}

	if LooksLikeText(head) {
		return Match{Family: FamilyText, Format: "text"}
	}

	return Match{Family: FamilyUnknown}
}

// Head returns at most PeekSize leading bytes of data.
func Head(data []byte) []byte {
	if len(data) > PeekSize {
		return data[:PeekSize]
	}
	return data
}

// LooksLikeText reports whether prefix is non-empty UTF-8 without NUL bytes
// in which at least 95% of runes are printable or whitespace. A leading
// byte order mark is ignored and a rune cut off at the end of prefix is tolerated.
func LooksLikeText(prefix []byte) bool {
	prefix = bytes.TrimPrefix(prefix, bom)
	if len(prefix) == 0 || bytes.IndexByte(prefix, 0) >= 0 {
		return false
	}

	var total, printable int
	for i := 0; i < len(prefix); {
		r, size := utf8.DecodeRune(prefix[i:])
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(prefix[i:]) {
				break
			}
			return false
		}
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
		i += size
	}

	if total == 0 {
		return false
	}
	return printable*100 >= total*95
}
