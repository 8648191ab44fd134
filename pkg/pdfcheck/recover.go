package pdfcheck

import "bytes"

// Recovery reports the outcome of Recover. Data is nil unless Recovered.
type Recovery struct {
	Recovered bool   `json:"recovered"`
	Data      []byte `json:"-"`
	Message   string `json:"message"`
}

// Recover attempts to salvage a PDF whose end-of-file marker is followed by
// trailing garbage by truncating just past the last marker. The result is
// not guaranteed to be a semantically valid PDF.
func Recover(data []byte) Recovery {
	head := data[:min(len(data), MinSize)]
	if !bytes.Contains(head, []byte("%PDF")) {
		return Recovery{Message: "no PDF header found in the first 100 bytes; recovery is not possible"}
	}

	if bytes.Contains(tail(data), []byte(trailerMarker)) {
		return Recovery{
			Recovered: true,
			Data:      data,
			Message:   "file already has a valid end-of-file marker",
		}
	}

	idx := bytes.LastIndex(data, []byte(trailerMarker))
	if idx < 0 {
		return Recovery{Message: "no end-of-file marker found; the file is truncated"}
	}

	end := idx + len(trailerMarker)
	if end < len(data) && (data[end] == '\n' || data[end] == '\r') {
		end++
	}

	recovered := make([]byte, end)
	copy(recovered, data[:end])

	return Recovery{
		Recovered: true,
		Data:      recovered,
		Message:   "removed trailing data after the last end-of-file marker",
	}
}
