package ingest

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

type run struct {
	text      string
	bold      bool
	italic    bool
	underline bool
}

type paragraph struct {
	style string
	list  bool
	runs  []run
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.runs {
		b.WriteString(r.text)
	}
	return b.String()
}

// heading returns the heading level implied by the paragraph style, or 0.
func (p paragraph) heading() int {
	style := strings.ToLower(strings.ReplaceAll(p.style, " ", ""))
	switch {
	case style == "title":
		return 1
	case style == "subtitle":
		return 2
	case strings.HasPrefix(style, "heading"):
		n, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
		if err == nil && n >= 1 {
			return min(n, 6)
		}
	}
	return 0
}

type block struct {
	para  *paragraph
	table [][]string
}

// parseWordXML walks a WordprocessingML document part into paragraph and
// table blocks. Nested tables are flattened into their enclosing cell and
// paragraphs nested in text boxes are merged into their host paragraph.
func parseWordXML(r io.Reader) ([]block, error) {
	dec := xml.NewDecoder(r)

	var (
		blocks     []block
		para       *paragraph
		cur        run
		inRun      bool
		inRunProps bool
		inText     bool
		tableDepth int
		nested     int
		table      [][]string
		row        []string
		cell       []string
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
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					table = nil
				}
			case "tr":
				if tableDepth == 1 {
					row = nil
				}
			case "tc":
				if tableDepth == 1 {
					cell = nil
				}
			case "p":
				if para != nil {
					nested++
					continue
				}
				para = &paragraph{}
			case "pStyle":
				if para != nil {
					para.style = attr(t, "val")
				}
			case "numPr":
				if para != nil {
					para.list = true
				}
			case "r":
				inRun = true
				cur = run{}
			case "rPr":
				inRunProps = inRun
			case "b":
				if inRunProps {
					cur.bold = toggleOn(t)
				}
			case "i":
				if inRunProps {
					cur.italic = toggleOn(t)
				}
			case "u":
				if inRunProps {
					cur.underline = attr(t, "val") != "none"
				}
			case "t":
				inText = inRun
			case "tab":
				if inRun {
					cur.text += "\t"
				}
			case "br", "cr":
				if inRun {
					cur.text += "\n"
				}
			}

		case xml.CharData:
			if inText {
				cur.text += string(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "rPr":
				inRunProps = false
			case "r":
				if para != nil && cur.text != "" {
					para.runs = append(para.runs, cur)
				}
				inRun = false
			case "p":
				if para == nil {
					continue
				}
				if nested > 0 {
					nested--
					continue
				}
				if tableDepth > 0 {
					if text := normalizeSpace(para.text()); text != "" {
						cell = append(cell, text)
					}
				} else {
					blocks = append(blocks, block{para: para})
				}
				para = nil
			case "tc":
				if tableDepth == 1 {
					row = append(row, strings.Join(cell, " "))
				}
			case "tr":
				if tableDepth == 1 {
					table = append(table, row)
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 {
					blocks = append(blocks, block{table: table})
				}
			}
		}
	}

	return blocks, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// toggleOn reads an OOXML on/off property; absence of val means on.
func toggleOn(el xml.StartElement) bool {
	switch attr(el, "val") {
	case "0", "false", "off":
		return false
	}
	return true
}
