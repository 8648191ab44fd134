package ingest

import "github.com/JaimeStill/folio/pkg/signature"

// Upload is a raw file as received at the system boundary. ContentType is
// the declared MIME type and is not trusted.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Document is the normalized extraction output. PlainText is never nil;
// failed extractions carry a diagnostic placeholder and Metadata["error"].
type Document struct {
	PlainText string         `json:"plain_text"`
	HTML      string         `json:"html"`
	Metadata  map[string]any `json:"metadata"`
}

// HasError reports whether the document is a failure placeholder.
func (d Document) HasError() bool {
	v, _ := d.Metadata["error"].(bool)
	return v
}

// Analysis is the combined output of AnalyzeAndExtract.
type Analysis struct {
	Decision Decision `json:"decision"`
	Document Document `json:"document"`
	Preview  string   `json:"preview"`
}

// Source is the input handed to an extractor.
type Source struct {
	Data     []byte
	Filename string
	Ext      string
	Mime     string
	Type     Type
	Match    signature.Match
}

// Result is what an extractor returns: a document and, when the document
// is a placeholder, the reason extraction failed.
type Result struct {
	Document Document
	Err      error
}

// Failed reports whether the extractor fell back to a placeholder.
func (r Result) Failed() bool {
	return r.Err != nil
}

func success(doc Document) Result {
	return Result{Document: doc}
}

func failure(doc Document, err error) Result {
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	doc.Metadata["error"] = true
	doc.Metadata["errorMessage"] = err.Error()
	return Result{Document: doc, Err: err}
}

// Extractor converts a Source into a Document. Implementations recover
// from their own parser failures and report them through Result.
type Extractor interface {
	Extract(src Source) Result
}
