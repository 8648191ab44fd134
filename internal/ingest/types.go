package ingest

import (
	"mime"
	"path/filepath"
	"strings"
)

// Type is the detected document type.
type Type string

const (
	TypePDF        Type = "pdf"
	TypeWord       Type = "word"
	TypeExcel      Type = "excel"
	TypePowerPoint Type = "powerpoint"
	TypeText       Type = "text"
	TypeCode       Type = "code"
	TypeImage      Type = "image"
	TypeUnknown    Type = "unknown"
)

const (
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeOdt  = "application/vnd.oasis.opendocument.text"
	MimeDoc  = "application/msword"
	MimeXls  = "application/vnd.ms-excel"
	MimePpt  = "application/vnd.ms-powerpoint"
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
	MimeHTML = "text/html"
	MimeRTF  = "application/rtf"

	MimeOctetStream = "application/octet-stream"
)

var extensionTypes = map[string]Type{
	"pdf":  TypePDF,
	"doc":  TypeWord,
	"docx": TypeWord,
	"odt":  TypeWord,
	"xls":  TypeExcel,
	"xlsx": TypeExcel,
	"ppt":  TypePowerPoint,
	"pptx": TypePowerPoint,
	"txt":  TypeText,
	"md":   TypeText,
	"rtf":  TypeText,
	"csv":  TypeText,
	"log":  TypeText,
	"js":   TypeCode,
	"ts":   TypeCode,
	"jsx":  TypeCode,
	"tsx":  TypeCode,
	"py":   TypeCode,
	"java": TypeCode,
	"cpp":  TypeCode,
	"c":    TypeCode,
	"go":   TypeCode,
	"html": TypeCode,
	"htm":  TypeCode,
	"css":  TypeCode,
	"json": TypeCode,
	"xml":  TypeCode,
	"yaml": TypeCode,
	"yml":  TypeCode,
	"toml": TypeCode,
	"sql":  TypeCode,
	"sh":   TypeCode,
	"jpg":  TypeImage,
	"jpeg": TypeImage,
	"png":  TypeImage,
	"gif":  TypeImage,
	"bmp":  TypeImage,
	"svg":  TypeImage,
	"webp": TypeImage,
}

var mimeTypes = map[string]Type{
	MimePDF:                  TypePDF,
	MimeDoc:                  TypeWord,
	MimeDocx:                 TypeWord,
	MimeOdt:                  TypeWord,
	MimeXls:                  TypeExcel,
	MimeXlsx:                 TypeExcel,
	MimePpt:                  TypePowerPoint,
	MimePptx:                 TypePowerPoint,
	MimeText:                 TypeText,
	"text/markdown":          TypeText,
	MimeRTF:                  TypeText,
	"text/rtf":               TypeText,
	"text/csv":               TypeText,
	"text/javascript":        TypeCode,
	"application/javascript": TypeCode,
	"text/typescript":        TypeCode,
	"text/x-python":          TypeCode,
	"text/x-java-source":     TypeCode,
	"text/x-c++src":          TypeCode,
	"text/x-csrc":            TypeCode,
	"text/x-go":              TypeCode,
	MimeHTML:                 TypeCode,
	"text/css":               TypeCode,
	"application/json":       TypeCode,
	"application/xml":        TypeCode,
	"text/xml":               TypeCode,
	"application/yaml":       TypeCode,
	"application/toml":       TypeCode,
	"application/sql":        TypeCode,
	"image/jpeg":             TypeImage,
	"image/png":              TypeImage,
	"image/gif":              TypeImage,
	"image/bmp":              TypeImage,
	"image/svg+xml":          TypeImage,
	"image/webp":             TypeImage,
}

var languages = map[string]string{
	"js":   "javascript",
	"jsx":  "javascript",
	"ts":   "typescript",
	"tsx":  "typescript",
	"py":   "python",
	"java": "java",
	"cpp":  "cpp",
	"c":    "c",
	"go":   "go",
	"html": "html",
	"htm":  "html",
	"css":  "css",
	"json": "json",
	"xml":  "xml",
	"yaml": "yaml",
	"yml":  "yaml",
	"toml": "toml",
	"sql":  "sql",
	"sh":   "shell",
}

// Extension returns the lowercased extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Stem returns the base filename without its extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NormalizeMime lowercases a MIME type and strips its parameters.
func NormalizeMime(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		return mt
	}
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = declared[:i]
	}
	return strings.ToLower(strings.TrimSpace(declared))
}

// TypeForExtension looks up an extension (without dot) in the static table.
func TypeForExtension(ext string) (Type, bool) {
	t, ok := extensionTypes[strings.ToLower(ext)]
	return t, ok
}

// TypeForMime looks up a MIME type in the static table after normalization.
func TypeForMime(declared string) (Type, bool) {
	t, ok := mimeTypes[NormalizeMime(declared)]
	return t, ok
}
