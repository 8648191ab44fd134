package ingest

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/richardlehane/mscfb"
)

// oleStreams reads the named streams of a compound binary file. Missing
// streams are absent from the result.
func oleStreams(data []byte, names ...string) (map[string][]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open compound file: %w", err)
	}

	streams := make(map[string][]byte, len(names))
	for {
		entry, err := doc.Next()
		if err != nil {
			break
		}
		if !slices.Contains(names, entry.Name) {
			continue
		}
		if _, seen := streams[entry.Name]; seen {
			continue
		}
		b, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("read stream %s: %w", entry.Name, err)
		}
		streams[entry.Name] = b
	}

	return streams, nil
}
