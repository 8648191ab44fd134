package documents

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/JaimeStill/folio/pkg/query"
	"github.com/JaimeStill/folio/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("owner_id", "OwnerID").
	Project("title", "Title").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("declared_type", "DeclaredType").
	Project("detected_type", "DetectedType").
	Project("confidence", "Confidence").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("content", "Content").
	Project("html_content", "HTMLContent").
	Project("metadata", "Metadata").
	Project("preview", "Preview").
	Project("has_error", "HasError").
	Project("storage_key", "StorageKey").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// returning lists the columns written back by INSERT and UPDATE statements,
// in scanDocument order.
const returning = `id, owner_id, title, filename, content_type, declared_type, detected_type,
	confidence, size_bytes, page_count, content, html_content, metadata, preview,
	has_error, storage_key, created_at, updated_at`

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. OwnerID, DetectedType, and HasError use exact
// matching. Filename uses case-insensitive contains matching. MinConfidence
// is a lower bound.
type Filters struct {
	OwnerID       *string  `json:"owner_id,omitempty"`
	DetectedType  *string  `json:"detected_type,omitempty"`
	HasError      *bool    `json:"has_error,omitempty"`
	Filename      *string  `json:"filename,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("OwnerID", f.OwnerID).
		WhereEquals("DetectedType", f.DetectedType).
		WhereEquals("HasError", f.HasError).
		WhereContains("Filename", f.Filename).
		WhereAtLeast("Confidence", f.MinConfidence)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Malformed boolean and numeric values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if o := values.Get("owner_id"); o != "" {
		f.OwnerID = &o
	}

	if dt := values.Get("detected_type"); dt != "" {
		f.DetectedType = &dt
	}

	if he := values.Get("has_error"); he != "" {
		if v, err := strconv.ParseBool(he); err == nil {
			f.HasError = &v
		}
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if mc := values.Get("min_confidence"); mc != "" {
		if v, err := strconv.ParseFloat(mc, 64); err == nil {
			f.MinConfidence = &v
		}
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		d    Document
		meta []byte
	)
	err := s.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Title,
		&d.Filename,
		&d.ContentType,
		&d.DeclaredType,
		&d.DetectedType,
		&d.Confidence,
		&d.SizeBytes,
		&d.PageCount,
		&d.Content,
		&d.HTMLContent,
		&meta,
		&d.Preview,
		&d.HasError,
		&d.StorageKey,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	d.Metadata = map[string]any{}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &d.Metadata); err != nil {
			return d, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return d, nil
}
