package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/lu4p/cat"
	"github.com/microcosm-cc/bluemonday"

	"github.com/JaimeStill/folio/pkg/formatting"
	"github.com/JaimeStill/folio/pkg/signature"
)

var (
	utf8BOM   = []byte("\xEF\xBB\xBF")
	rtfPrefix = []byte(`{\rtf`)

	markupPolicy = bluemonday.UGCPolicy()
	stripPolicy  = bluemonday.StrictPolicy()

	extraBlankLines = regexp.MustCompile(`\n{3,}`)

	errBinary = errors.New("file contains binary data that cannot be shown as text")
)

var textFailure = placeholder{
	heading: "Could not read the file as text",
	causes: []string{
		"the file is a binary format without a dedicated reader",
		"the file is corrupted or uses an unsupported encoding",
	},
	docType: TypeText,
	format:  "binary",
	class:   "text-document",
	style:   textStyle,
}

// textExtractor is the fallback for every type without a dedicated extractor.
type textExtractor struct{}

func (textExtractor) Extract(src Source) (res Result) {
	defer recoverInto(&res, src, textFailure)

	if len(bytes.TrimPrefix(src.Data, utf8BOM)) == 0 {
		return success(emptyDocument(src))
	}

	if isBinary(src) {
		if src.Match.Family == signature.FamilyImage || src.Type == TypeImage {
			return success(imageDocument(src))
		}
		return failure(textFailure.document(src, errBinary), errBinary)
	}

	switch {
	case bytes.HasPrefix(src.Data, rtfPrefix) || src.Ext == "rtf":
		text, err := cat.FromBytes(src.Data)
		if err != nil {
			err = fmt.Errorf("read rtf: %w", err)
			return failure(textFailure.document(src, err), err)
		}
		return success(plainDocument(src, text, "rtf", false))
	case src.Ext == "html" || src.Ext == "htm" || src.Mime == MimeHTML:
		return success(markupDocument(src))
	}

	hasBOM := bytes.HasPrefix(src.Data, utf8BOM)
	text := storable(string(bytes.TrimPrefix(src.Data, utf8BOM)))
	return success(plainDocument(src, text, "plain", hasBOM))
}

// isBinary trusts the sniffed prefix: anything the sniffer did not accept
// as printable text is binary.
func isBinary(src Source) bool {
	return src.Match.Family != signature.FamilyText
}

func textMetadata(src Source, format string, text string, hasBOM bool) map[string]any {
	docType := src.Type
	if docType != TypeCode && docType != TypeImage {
		docType = TypeText
	}

	meta := map[string]any{
		"title":     Stem(src.Filename),
		"type":      string(docType),
		"format":    format,
		"encoding":  "utf-8",
		"lineCount": lineCount(text),
		"hasBOM":    hasBOM,
	}
	if lang, ok := languages[src.Ext]; ok {
		meta["language"] = lang
	}
	return meta
}

func plainDocument(src Source, text, format string, hasBOM bool) Document {
	class := ""
	if lang, ok := languages[src.Ext]; ok {
		class = fmt.Sprintf(" class=\"language-%s\"", lang)
	}

	return Document{
		PlainText: text,
		HTML:      wrap("text-document", textStyle, fmt.Sprintf("<pre%s>%s</pre>\n", class, escape(text))),
		Metadata:  textMetadata(src, format, text, hasBOM),
	}
}

// markupDocument renders sanitized HTML input and strips tags for the
// plain-text rendition.
func markupDocument(src Source) Document {
	raw := storable(string(bytes.TrimPrefix(src.Data, utf8BOM)))

	text := html.UnescapeString(stripPolicy.Sanitize(raw))
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.TrimSpace(extraBlankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))

	return Document{
		PlainText: text,
		HTML:      wrap("text-document", textStyle, markupPolicy.Sanitize(raw)+"\n"),
		Metadata:  textMetadata(src, "html", text, bytes.HasPrefix(src.Data, utf8BOM)),
	}
}

func emptyDocument(src Source) Document {
	return Document{
		PlainText: "",
		HTML:      wrap("text-document", textStyle, "<p class=\"notice\">Empty file.</p>\n"),
		Metadata:  textMetadata(src, "plain", "", false),
	}
}

func imageDocument(src Source) Document {
	format := src.Match.Format
	if format == "" {
		format = src.Ext
	}
	size := formatting.FormatBytes(int64(len(src.Data)), 1)
	label := fmt.Sprintf("Image file %s (%s, %s)", src.Filename, strings.ToUpper(format), size)

	return Document{
		PlainText: label,
		HTML:      wrap("text-document", textStyle, fmt.Sprintf("<p class=\"notice\">%s</p>\n", escape(label))),
		Metadata: map[string]any{
			"title":    Stem(src.Filename),
			"type":     string(TypeImage),
			"format":   format,
			"fileSize": len(src.Data),
		},
	}
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
