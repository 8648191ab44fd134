package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lu4p/cat"
	"github.com/nguyenthenguyen/docx"

	"github.com/JaimeStill/folio/pkg/signature"
)

var wordFailure = placeholder{
	heading: "Could not read the Word document",
	causes: []string{
		"the file is corrupted or incomplete",
		"the file uses an unsupported legacy Word variant",
		"the file is password protected",
	},
	docType: TypeWord,
	format:  "word",
	class:   "word-document",
	style:   wordStyle,
}

type wordExtractor struct{}

func (wordExtractor) Extract(src Source) (res Result) {
	defer recoverInto(&res, src, wordFailure)

	switch {
	case src.Match.Family == signature.FamilyOLE:
		return extractLegacyWord(src)
	case src.Ext == "odt":
		return extractODT(src)
	}
	return extractDocx(src)
}

func extractDocx(src Source) Result {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(src.Data), int64(len(src.Data)))
	if err != nil {
		return failure(wordFailure.document(src, err), fmt.Errorf("open docx: %w", err))
	}
	defer r.Close()

	blocks, err := parseWordXML(strings.NewReader(r.Editable().GetContent()))
	if err != nil {
		return failure(wordFailure.document(src, err), fmt.Errorf("parse docx body: %w", err))
	}

	return success(renderWord(src, blocks, "docx"))
}

func extractODT(src Source) Result {
	text, err := cat.FromBytes(src.Data)
	if err != nil {
		return failure(wordFailure.document(src, err), fmt.Errorf("read odt: %w", err))
	}
	return success(renderWord(src, plainBlocks(text), "odt"))
}

// plainBlocks turns line-oriented text into paragraph blocks.
func plainBlocks(text string) []block {
	var blocks []block
	for line := range strings.SplitSeq(text, "\n") {
		blocks = append(blocks, block{para: &paragraph{runs: []run{{text: line}}}})
	}
	return blocks
}

func renderWord(src Source, blocks []block, format string) Document {
	var (
		body       strings.Builder
		text       []string
		listOpen   bool
		paragraphs int
		tables     int
		heading    string
	)

	closeList := func() {
		if listOpen {
			body.WriteString("</ul>\n")
			listOpen = false
		}
	}

	for _, b := range blocks {
		if b.para == nil {
			closeList()
			tables++
			text = append(text, tableText(b.table)...)
			body.WriteString(tableHTML(b.table))
			continue
		}

		line := normalizeSpace(b.para.text())
		if line == "" {
			continue
		}
		paragraphs++
		text = append(text, line)

		if b.para.list {
			if !listOpen {
				body.WriteString("<ul>\n")
				listOpen = true
			}
			fmt.Fprintf(&body, "<li>%s</li>\n", runsHTML(b.para.runs))
			continue
		}
		closeList()

		if level := b.para.heading(); level > 0 {
			if heading == "" {
				heading = line
			}
			fmt.Fprintf(&body, "<h%d>%s</h%d>\n", level, runsHTML(b.para.runs), level)
			continue
		}
		fmt.Fprintf(&body, "<p>%s</p>\n", runsHTML(b.para.runs))
	}
	closeList()

	if paragraphs == 0 && tables == 0 {
		body.WriteString("<p><em>The document is empty.</em></p>\n")
	}

	meta := map[string]any{
		"title":      Stem(src.Filename),
		"type":       string(TypeWord),
		"format":     format,
		"paragraphs": paragraphs,
		"tables":     tables,
	}
	if heading != "" {
		meta["heading"] = heading
	}

	return Document{
		PlainText: strings.Join(text, "\n"),
		HTML:      wrap("word-document", wordStyle, body.String()),
		Metadata:  meta,
	}
}

func runsHTML(runs []run) string {
	var b strings.Builder
	for _, r := range runs {
		s := strings.ReplaceAll(escape(r.text), "\n", "<br>")
		if r.underline {
			s = "<u>" + s + "</u>"
		}
		if r.italic {
			s = "<em>" + s + "</em>"
		}
		if r.bold {
			s = "<strong>" + s + "</strong>"
		}
		b.WriteString(s)
	}
	return b.String()
}

func tableHTML(rows [][]string) string {
	var b strings.Builder
	b.WriteString("<table>\n")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<td>%s</td>", escape(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n")
	return b.String()
}

func tableText(rows [][]string) []string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if line := strings.Join(row, "\t"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// recoverInto converts a parser panic into the extractor's placeholder.
func recoverInto(res *Result, src Source, ph placeholder) {
	if r := recover(); r != nil {
		err := fmt.Errorf("parser panic: %v", r)
		*res = failure(ph.document(src, err), err)
	}
}
