package ingest

import "github.com/JaimeStill/folio/pkg/signature"

// Confidence levels assigned by the resolver, from strongest agreement to
// weakest single signal.
const (
	confMagicAll       = 0.98
	confContainerAll   = 0.96
	confTextAll        = 0.95
	confMagicOne       = 0.95
	confContainerOne   = 0.93
	confMagicAlone     = 0.92
	confContainerAlone = 0.90
	confTextOne        = 0.90
	confMetadataBoth   = 0.85
	confExtension      = 0.82
	confMime           = 0.80
	confTextAlone      = 0.80
	confMetadataSplit  = 0.80

	readableThreshold = 0.5
)

// Signal records one contributing input and the type it indicated.
type Signal struct {
	Type  Type   `json:"type"`
	Value string `json:"value"`
}

// Evidence records which signals contributed to a Decision.
type Evidence struct {
	Extension    *Signal         `json:"extension,omitempty"`
	DeclaredMime *Signal         `json:"declared_mime,omitempty"`
	Content      *Signal         `json:"content,omitempty"`
	Container    signature.Match `json:"container"`
}

// Decision is the resolved document type and how strongly it is supported.
type Decision struct {
	Type       Type     `json:"detected_type"`
	Confidence float64  `json:"confidence"`
	MimeType   string   `json:"mime_type"`
	IsReadable bool     `json:"is_readable"`
	Evidence   Evidence `json:"evidence"`
}

// Resolver reconciles file extension, declared MIME type, and content
// signature into a single Decision. Content evidence overrides metadata.
type Resolver struct {
	sniffer signature.Sniffer
}

// NewResolver creates a Resolver using sniffer for content signatures.
// A nil sniffer uses the default signature table.
func NewResolver(sniffer signature.Sniffer) *Resolver {
	if sniffer == nil {
		sniffer = signature.New()
	}
	return &Resolver{sniffer: sniffer}
}

// Sniff exposes the resolver's content signature lookup.
func (r *Resolver) Sniff(data []byte) signature.Match {
	return r.sniffer.Sniff(data)
}

// Resolve never inspects more than the signature prefix of data.
func (r *Resolver) Resolve(filename, declaredMime string, data []byte) Decision {
	ext := Extension(filename)
	declared := NormalizeMime(declaredMime)
	match := r.sniffer.Sniff(data)

	var ev Evidence
	ev.Container = match

	extType, extOK := TypeForExtension(ext)
	if extOK {
		ev.Extension = &Signal{Type: extType, Value: ext}
	}

	mimeType, mimeOK := TypeForMime(declared)
	if mimeOK {
		ev.DeclaredMime = &Signal{Type: mimeType, Value: declared}
	}

	if len(data) == 0 {
		return Decision{
			Type:     TypeUnknown,
			MimeType: fallbackMime(declared),
			Evidence: ev,
		}
	}

	contentType, contentOK := contentCandidate(match, ext, extType, extOK, mimeType, mimeOK, declared)
	if contentOK {
		ev.Content = &Signal{Type: contentType, Value: match.Format}
	}

	t, confidence := decide(match, contentType, contentOK, extType, extOK, mimeType, mimeOK)

	return Decision{
		Type:       t,
		Confidence: confidence,
		MimeType:   canonicalMime(t, match, ext, declared),
		IsReadable: confidence > readableThreshold,
		Evidence:   ev,
	}
}

func contentCandidate(
	match signature.Match,
	ext string,
	extType Type, extOK bool,
	mimeType Type, mimeOK bool,
	declared string,
) (Type, bool) {
	switch match.Family {
	case signature.FamilyPDF:
		return TypePDF, true
	case signature.FamilyImage:
		return TypeImage, true
	case signature.FamilyZIP, signature.FamilyOLE:
		if extOK && isOffice(extType) {
			return extType, true
		}
		if mimeOK && isOffice(mimeType) {
			return mimeType, true
		}
		return TypeUnknown, false
	case signature.FamilyText:
		if extOK && textCompatible(extType, ext, "") {
			return extType, true
		}
		if mimeOK && textCompatible(mimeType, "", declared) {
			return mimeType, true
		}
		return TypeText, true
	}
	return TypeUnknown, false
}

func decide(
	match signature.Match,
	contentType Type, contentOK bool,
	extType Type, extOK bool,
	mimeType Type, mimeOK bool,
) (Type, float64) {
	if contentOK {
		agree := 0
		if extOK && extType == contentType {
			agree++
		}
		if mimeOK && mimeType == contentType {
			agree++
		}
		return contentType, ladder(match.Family, agree)
	}

	switch {
	case extOK && mimeOK && extType == mimeType:
		return extType, confMetadataBoth
	case extOK && mimeOK:
		return extType, confMetadataSplit
	case extOK:
		return extType, confExtension
	case mimeOK:
		return mimeType, confMime
	}
	return TypeUnknown, 0
}

func ladder(family signature.Family, agree int) float64 {
	switch family {
	case signature.FamilyPDF, signature.FamilyImage:
		return [...]float64{confMagicAlone, confMagicOne, confMagicAll}[agree]
	case signature.FamilyZIP, signature.FamilyOLE:
		return [...]float64{confContainerAlone, confContainerOne, confContainerAll}[agree]
	}
	return [...]float64{confTextAlone, confTextOne, confTextAll}[agree]
}

func isOffice(t Type) bool {
	return t == TypeWord || t == TypeExcel || t == TypePowerPoint
}

// textCompatible reports whether printable content confirms a metadata
// candidate. SVG is XML text and confirms an image candidate.
func textCompatible(t Type, ext, declared string) bool {
	switch t {
	case TypeText, TypeCode:
		return true
	case TypeImage:
		return ext == "svg" || declared == "image/svg+xml"
	}
	return false
}
