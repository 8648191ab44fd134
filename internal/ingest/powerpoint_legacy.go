package ingest

import (
	"encoding/binary"
	"errors"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Binary PowerPoint record types.
const (
	recSlide             = 0x03EE
	recNotes             = 0x03F0
	recSlidePersistAtom  = 0x03F3
	recMainMaster        = 0x03F8
	recHandout           = 0x0FC9
	recSlideListWithText = 0x0FF0
	recTextCharsAtom     = 0x0FA0
	recTextBytesAtom     = 0x0FA8

	recHeaderSize = 8
)

var errNoPPTStream = errors.New("PowerPoint Document stream not found")

var masterNoise = []string{
	"Click to edit Master title style",
	"Click to edit Master text styles",
	"Click to edit Master subtitle style",
	"Second level",
	"Third level",
	"Fourth level",
	"Fifth level",
}

func legacySlides(data []byte) ([][]string, error) {
	streams, err := oleStreams(data, "PowerPoint Document")
	if err != nil {
		return nil, err
	}

	stream := streams["PowerPoint Document"]
	if len(stream) == 0 {
		return nil, errNoPPTStream
	}

	w := &pptWalker{current: -1}
	w.walk(stream)
	if len(w.units) == 0 {
		return nil, errNoSlides
	}
	return w.units, nil
}

// pptWalker groups text atoms into slides. Slide text lists start a new
// unit at each SlidePersistAtom; drawing text inside the n-th Slide
// container joins the n-th unit. Masters, notes, and handouts are skipped.
type pptWalker struct {
	units   [][]string
	current int
	slides  int
}

func (w *pptWalker) walk(data []byte) {
	pos := 0
	for pos+recHeaderSize <= len(data) {
		verInstance := binary.LittleEndian.Uint16(data[pos:])
		recType := binary.LittleEndian.Uint16(data[pos+2:])
		recLen := int(binary.LittleEndian.Uint32(data[pos+4:]))
		pos += recHeaderSize

		if recLen < 0 || recLen > len(data)-pos {
			return
		}
		payload := data[pos : pos+recLen]
		pos += recLen

		if verInstance&0x0F == 0x0F {
			w.container(recType, verInstance>>4, payload)
			continue
		}

		switch recType {
		case recSlidePersistAtom:
			w.units = append(w.units, nil)
			w.current = len(w.units) - 1
		case recTextCharsAtom:
			w.add(decodeUTF16(payload))
		case recTextBytesAtom:
			w.add(decodeANSI(payload))
		}
	}
}

// decodeANSI reads a TextBytesAtom payload, one byte per character.
// Bytes 0x80-0x9F decode as Windows-1252 punctuation.
func decodeANSI(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(charmap.Windows1252.DecodeByte(c))
	}
	return sb.String()
}

func (w *pptWalker) container(recType, instance uint16, payload []byte) {
	switch recType {
	case recMainMaster, recNotes, recHandout:
		return
	case recSlideListWithText:
		if instance != 0 {
			return
		}
		w.walk(payload)
	case recSlide:
		saved := w.current
		for len(w.units) <= w.slides {
			w.units = append(w.units, nil)
		}
		w.current = w.slides
		w.slides++
		w.walk(payload)
		w.current = saved
	default:
		w.walk(payload)
	}
}

func (w *pptWalker) add(text string) {
	text = normalizeSpace(strings.ReplaceAll(text, "\r", "\n"))
	if text == "" || isMasterNoise(text) {
		return
	}
	if w.current < 0 {
		w.units = append(w.units, nil)
		w.current = len(w.units) - 1
	}
	w.units[w.current] = append(w.units[w.current], text)
}

func decodeUTF16(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return string(utf16.Decode(units))
}

func isMasterNoise(text string) bool {
	for _, n := range masterNoise {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
