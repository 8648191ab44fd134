package ingest

// Kind identifies one of the format extractors.
type Kind int

const (
	KindText Kind = iota
	KindWord
	KindExcel
	KindPowerPoint
	KindPDF
)

// Kinds returns every extractor kind.
func Kinds() []Kind {
	return []Kind{KindText, KindWord, KindExcel, KindPowerPoint, KindPDF}
}

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindWord:
		return "word"
	case KindExcel:
		return "excel"
	case KindPowerPoint:
		return "powerpoint"
	case KindPDF:
		return "pdf"
	}
	return "unknown"
}

// KindOf maps a detected type to the extractor that handles it.
// Types without a dedicated extractor go to KindText.
func KindOf(t Type) Kind {
	switch t {
	case TypeWord:
		return KindWord
	case TypeExcel:
		return KindExcel
	case TypePowerPoint:
		return KindPowerPoint
	case TypePDF:
		return KindPDF
	case TypeText, TypeCode, TypeImage, TypeUnknown:
		return KindText
	}
	return KindText
}
