package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/folio/pkg/signature"
)

var excelFailure = placeholder{
	heading: "Could not read the spreadsheet",
	causes: []string{
		"the file is corrupted or incomplete",
		"the workbook is password protected",
		"the file is not actually a spreadsheet",
	},
	docType: TypeExcel,
	format:  "excel",
	class:   "excel-document",
	style:   excelStyle,
}

type sheet struct {
	name string
	rows [][]string
}

type excelExtractor struct {
	maxRows int
}

func (e excelExtractor) Extract(src Source) (res Result) {
	defer recoverInto(&res, src, excelFailure)

	if src.Match.Family == signature.FamilyOLE {
		sheets, err := readXLS(src.Data)
		if err != nil {
			return failure(excelFailure.document(src, err), err)
		}
		return success(e.render(src, sheets, "xls_legacy", ""))
	}

	f, err := excelize.OpenReader(bytes.NewReader(src.Data))
	if err != nil {
		err = fmt.Errorf("open workbook: %w", err)
		return failure(excelFailure.document(src, err), err)
	}
	defer f.Close()

	var sheets []sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			err = fmt.Errorf("read sheet %s: %w", name, err)
			return failure(excelFailure.document(src, err), err)
		}
		sheets = append(sheets, sheet{name: name, rows: rows})
	}

	var author string
	if props, err := f.GetDocProps(); err == nil && props != nil {
		author = props.Creator
	}

	return success(e.render(src, sheets, "xlsx", author))
}

func readXLS(data []byte) ([]sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xls workbook: %w", err)
	}

	var sheets []sheet
	for i := range wb.GetNumberSheets() {
		s, err := wb.GetSheet(i)
		if err != nil {
			continue
		}

		sh := sheet{name: s.GetName()}
		for r := range s.GetNumberRows() {
			row, err := s.GetRow(r)
			if err != nil || row == nil {
				continue
			}
			var cells []string
			for _, c := range row.GetCols() {
				cells = append(cells, c.GetString())
			}
			sh.rows = append(sh.rows, cells)
		}
		sheets = append(sheets, sh)
	}

	return sheets, nil
}

// render emits one table per sheet. At most maxRows non-empty rows per
// sheet are kept, the first of which becomes the header.
func (e excelExtractor) render(src Source, sheets []sheet, format, author string) Document {
	var (
		body      strings.Builder
		text      []string
		truncated []string
	)

	for _, s := range sheets {
		rows := nonEmptyRows(s.rows)
		capped := len(rows) > e.maxRows
		if capped {
			truncated = append(truncated, s.name)
			rows = rows[:e.maxRows]
		}

		text = append(text, fmt.Sprintf("--- Sheet: %s ---", s.name))
		for _, row := range rows {
			text = append(text, strings.Join(row, "\t"))
		}

		fmt.Fprintf(&body, "<div class=\"excel-sheet\">\n<div class=\"sheet-title\">%s</div>\n<table class=\"excel-table\">\n", escape(s.name))
		if len(rows) > 0 {
			body.WriteString("<thead><tr>")
			for _, cell := range rows[0] {
				fmt.Fprintf(&body, "<th>%s</th>", escape(cell))
			}
			body.WriteString("</tr></thead>\n<tbody>\n")
			for _, row := range rows[1:] {
				body.WriteString("<tr>")
				for _, cell := range row {
					fmt.Fprintf(&body, "<td>%s</td>", escape(cell))
				}
				body.WriteString("</tr>\n")
			}
			body.WriteString("</tbody>\n")
		}
		body.WriteString("</table>\n")
		if capped {
			fmt.Fprintf(&body, "<div class=\"sheet-notice\">Showing the first %d rows.</div>\n", e.maxRows)
		}
		body.WriteString("</div>\n")
	}

	meta := map[string]any{
		"title":  Stem(src.Filename),
		"type":   string(TypeExcel),
		"format": format,
		"sheets": len(sheets),
	}
	if author != "" {
		meta["author"] = author
	}
	if len(truncated) > 0 {
		meta["truncatedSheets"] = truncated
	}

	return Document{
		PlainText: strings.Join(text, "\n"),
		HTML:      wrap("excel-document", excelStyle, body.String()),
		Metadata:  meta,
	}
}

func nonEmptyRows(rows [][]string) [][]string {
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				kept = append(kept, row)
				break
			}
		}
	}
	return kept
}
