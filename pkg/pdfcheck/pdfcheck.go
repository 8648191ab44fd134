// Package pdfcheck performs heuristic structural validation of PDF buffers
// and best-effort recovery of files with trailing garbage.
package pdfcheck

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	// MinSize is the smallest buffer considered a plausible PDF.
	MinSize = 100

	// WindowSize is the number of bytes inspected at the head and tail.
	WindowSize = 1024

	headerMarker  = "%PDF-"
	trailerMarker = "%%EOF"
	encryptMarker = "/Encrypt"
)

var (
	versionPattern = regexp.MustCompile(`%PDF-(\d+\.\d+)`)
	countPattern   = regexp.MustCompile(`/Count\s+(\d+)`)
)

// Diagnostics reports the outcome of Validate. Flags computed before a
// short-circuiting failure remain populated.
type Diagnostics struct {
	IsValid             bool     `json:"is_valid"`
	Error               string   `json:"error,omitempty"`
	HasValidHeader      bool     `json:"has_valid_header"`
	HasValidStructure   bool     `json:"has_valid_structure"`
	IsPasswordProtected bool     `json:"is_password_protected"`
	Version             string   `json:"version,omitempty"`
	PageCount           int      `json:"page_count"`
	FileSize            int64    `json:"file_size"`
	HeaderHex           string   `json:"header_hex"`
	Suggestions         []string `json:"suggestions"`
}

// Validate checks, in order: minimum size, header signature and version,
// trailer marker in the tail window, encryption markers, and page count.
func Validate(data []byte) Diagnostics {
	d := Diagnostics{
		FileSize:    int64(len(data)),
		HeaderHex:   hex.EncodeToString(data[:min(len(data), 32)]),
		Suggestions: []string{},
	}

	d.HasValidHeader, d.Version = checkHeader(data)

	if len(data) < MinSize {
		d.fail(fmt.Sprintf("file too small to be a PDF (%d bytes)", len(data)))
		d.Suggestions = suggest(d)
		return d
	}

	if !d.HasValidHeader {
		d.fail("missing PDF header signature")
		d.Suggestions = suggest(d)
		return d
	}

	d.HasValidStructure = bytes.Contains(tail(data), []byte(trailerMarker))
	if !d.HasValidStructure {
		d.fail("missing end-of-file marker; the file may be truncated or corrupted")
	}

	if bytes.Contains(data, []byte(encryptMarker)) {
		d.IsPasswordProtected = true
		d.fail("PDF is password protected")
	}

	d.PageCount = pageCount(data)
	d.IsValid = d.HasValidHeader && d.HasValidStructure && !d.IsPasswordProtected

	if !d.IsValid {
		d.Suggestions = suggest(d)
	}

	return d
}

func (d *Diagnostics) fail(msg string) {
	d.IsValid = false
	if d.Error == "" {
		d.Error = msg
	}
}

func checkHeader(data []byte) (bool, string) {
	head := data[:min(len(data), WindowSize)]
	if !bytes.HasPrefix(head, []byte(headerMarker)) {
		return false, ""
	}

	var version string
	if m := versionPattern.FindSubmatch(head); m != nil {
		version = string(m[1])
	}
	return true, version
}

func tail(data []byte) []byte {
	if len(data) > WindowSize {
		return data[len(data)-WindowSize:]
	}
	return data
}

func pageCount(data []byte) (count int) {
	defer func() {
		if recover() != nil {
			count = countFromTree(data)
		}
	}()

	if n, err := api.PageCount(bytes.NewReader(data), nil); err == nil && n > 0 {
		return n
	}
	return countFromTree(data)
}

func countFromTree(data []byte) int {
	m := countPattern.FindSubmatch(data)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0
	}
	return n
}
