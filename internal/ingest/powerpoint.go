package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/JaimeStill/folio/pkg/signature"
)

var pptxSlidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

var errNoSlides = errors.New("no slides found in presentation")

var powerpointFailure = placeholder{
	heading: "Could not read the presentation",
	causes: []string{
		"the file is corrupted or incomplete",
		"the presentation is password protected",
		"the file is not actually a presentation",
	},
	docType: TypePowerPoint,
	format:  "powerpoint",
	class:   "powerpoint-document",
	style:   powerpointStyle,
}

// powerpointExtractor produces approximate pseudo-slides: each slide part
// contributes its text paragraphs. Layout, shapes, and notes are not read.
type powerpointExtractor struct{}

func (powerpointExtractor) Extract(src Source) (res Result) {
	defer recoverInto(&res, src, powerpointFailure)

	var (
		units  [][]string
		format string
		err    error
	)

	if src.Match.Family == signature.FamilyOLE {
		format = "ppt_legacy"
		units, err = legacySlides(src.Data)
	} else {
		format = "pptx"
		units, err = pptxSlides(src.Data)
	}
	if err != nil {
		return failure(powerpointFailure.document(src, err), err)
	}

	return success(renderSlides(src, units, format))
}

func pptxSlides(data []byte) ([][]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open presentation package: %w", err)
	}

	type part struct {
		n    int
		file *zip.File
	}

	var parts []part
	for _, f := range zr.File {
		m := pptxSlidePattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		parts = append(parts, part{n: n, file: f})
	}
	if len(parts) == 0 {
		return nil, errNoSlides
	}

	slices.SortFunc(parts, func(a, b part) int { return a.n - b.n })

	units := make([][]string, 0, len(parts))
	for _, p := range parts {
		rc, err := p.file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", p.file.Name, err)
		}
		paras, err := slideParagraphs(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p.file.Name, err)
		}
		units = append(units, paras)
	}

	return units, nil
}

// slideParagraphs collects the text runs of each DrawingML paragraph.
func slideParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paras  []string
		cur    strings.Builder
		inText bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				cur.Reset()
			case "t":
				inText = true
			case "br":
				cur.WriteByte(' ')
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := normalizeSpace(cur.String()); text != "" {
					paras = append(paras, text)
				}
				cur.Reset()
			}
		}
	}

	return paras, nil
}

func renderSlides(src Source, units [][]string, format string) Document {
	var (
		body  strings.Builder
		text  []string
		count int
	)

	for _, paras := range units {
		if len(paras) == 0 {
			continue
		}
		count++

		text = append(text, fmt.Sprintf("--- Slide %d ---", count))
		text = append(text, paras...)

		fmt.Fprintf(&body, "<div class=\"slide\">\n<h2>Slide %d</h2>\n", count)
		for _, p := range paras {
			fmt.Fprintf(&body, "<p>%s</p>\n", escape(p))
		}
		body.WriteString("</div>\n")
	}

	if count == 0 {
		body.WriteString("<p><em>The presentation contains no text.</em></p>\n")
	}

	return Document{
		PlainText: strings.Join(text, "\n"),
		HTML:      wrap("powerpoint-document", powerpointStyle, body.String()),
		Metadata: map[string]any{
			"title":  Stem(src.Filename),
			"type":   string(TypePowerPoint),
			"format": format,
			"slides": count,
		},
	}
}
