package ingest

import "github.com/JaimeStill/folio/pkg/signature"

var extensionMimes = map[string]string{
	"pdf":  MimePDF,
	"doc":  MimeDoc,
	"docx": MimeDocx,
	"odt":  MimeOdt,
	"xls":  MimeXls,
	"xlsx": MimeXlsx,
	"ppt":  MimePpt,
	"pptx": MimePptx,
	"txt":  MimeText,
	"md":   "text/markdown",
	"rtf":  MimeRTF,
	"csv":  "text/csv",
	"html": MimeHTML,
	"htm":  MimeHTML,
	"json": "application/json",
	"xml":  "application/xml",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

var containerMimes = map[signature.Family]map[Type]string{
	signature.FamilyZIP: {
		TypeWord:       MimeDocx,
		TypeExcel:      MimeXlsx,
		TypePowerPoint: MimePptx,
	},
	signature.FamilyOLE: {
		TypeWord:       MimeDoc,
		TypeExcel:      MimeXls,
		TypePowerPoint: MimePpt,
	},
}

var defaultMimes = map[Type]string{
	TypePDF:        MimePDF,
	TypeWord:       MimeDocx,
	TypeExcel:      MimeXlsx,
	TypePowerPoint: MimePptx,
	TypeText:       MimeText,
	TypeCode:       MimeText,
}

// canonicalMime picks the MIME type that matches the resolved type, trusting
// the content signature first, then the declared type, then the extension.
func canonicalMime(t Type, match signature.Match, ext, declared string) string {
	switch {
	case t == TypeImage && match.Family == signature.FamilyImage:
		return "image/" + match.Format
	case t == TypePDF:
		return MimePDF
	case t == TypeWord && ext == "odt":
		return MimeOdt
	}

	if byType, ok := containerMimes[match.Family]; ok {
		if m, ok := byType[t]; ok {
			return m
		}
	}

	if dt, ok := TypeForMime(declared); ok && dt == t {
		return declared
	}

	if m, ok := extensionMimes[ext]; ok {
		if et, _ := TypeForMime(m); et == t {
			return m
		}
	}

	if m, ok := defaultMimes[t]; ok {
		return m
	}
	return fallbackMime(declared)
}

func fallbackMime(declared string) string {
	if declared != "" {
		return declared
	}
	return MimeOctetStream
}
