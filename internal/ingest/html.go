package ingest

import (
	"fmt"
	"html"
	"strings"
)

const wordStyle = `<style>
.word-document { font-family: 'Times New Roman', serif; font-size: 12pt; line-height: 1.6; color: #000; }
.word-document h1, .word-document h2, .word-document h3, .word-document h4, .word-document h5, .word-document h6 { margin: 1em 0 0.5em; font-weight: bold; }
.word-document p { margin: 0 0 0.8em; }
.word-document ul { margin: 0 0 0.8em 1.5em; }
.word-document table { border-collapse: collapse; width: 100%; margin: 1em 0; }
.word-document td, .word-document th { border: 1px solid #ccc; padding: 6px 8px; vertical-align: top; }
</style>`

const excelStyle = `<style>
.excel-document { font-family: Calibri, Arial, sans-serif; font-size: 11pt; }
.excel-sheet { margin-bottom: 2em; }
.sheet-title { font-weight: bold; font-size: 14pt; margin-bottom: 0.5em; color: #217346; }
.excel-table { border-collapse: collapse; width: 100%; }
.excel-table th { background: #f2f2f2; font-weight: bold; border: 1px solid #d4d4d4; padding: 4px 8px; text-align: left; }
.excel-table td { border: 1px solid #d4d4d4; padding: 4px 8px; }
.sheet-notice { color: #666; font-style: italic; margin-top: 0.5em; }
</style>`

const powerpointStyle = `<style>
.powerpoint-document { font-family: Arial, sans-serif; background: #f5f5f5; padding: 20px; }
.slide { background: #fff; border-radius: 8px; box-shadow: 0 2px 8px rgba(0, 0, 0, 0.15); margin: 0 auto 24px; max-width: 960px; overflow: hidden; }
.slide h2 { margin: 0; padding: 16px 24px; color: #fff; font-size: 16pt; background: linear-gradient(135deg, #d24726, #f0a030); }
.slide p { margin: 12px 24px; font-size: 14pt; line-height: 1.5; }
</style>`

const pdfStyle = `<style>
.pdf-document { font-family: Georgia, serif; line-height: 1.6; }
.pdf-info { background: #eef3fb; border-left: 4px solid #3b6fc4; padding: 10px 14px; margin-bottom: 1em; font-family: Arial, sans-serif; font-size: 10pt; }
.pdf-page p { margin: 0 0 1em; text-align: justify; }
.pdf-error { background: #fff4f4; border: 1px solid #e0a0a0; border-radius: 6px; padding: 16px; font-family: Arial, sans-serif; }
.pdf-error h3 { margin-top: 0; color: #b02a2a; }
</style>`

const textStyle = `<style>
.text-document pre { font-family: 'Courier New', monospace; font-size: 10pt; white-space: pre-wrap; word-wrap: break-word; background: #fafafa; border: 1px solid #e5e5e5; padding: 12px; }
.text-document .notice { color: #666; font-style: italic; }
</style>`

const errorStyle = `<style>
.error-document { font-family: Arial, sans-serif; background: #fff8f0; border: 1px solid #f0c090; border-radius: 6px; padding: 20px; }
.error-document h3 { margin-top: 0; color: #a94400; }
.error-content { font-size: 10pt; color: #333; }
.error-content code { background: #f4f4f4; padding: 2px 4px; }
</style>`

const truncationNotice = `<div class="truncation-notice" style="margin-top: 1em; padding: 8px; background: #fffbe6; border: 1px solid #e6d17a; font-style: italic;">%s</div>`

func escape(s string) string {
	return html.EscapeString(s)
}

// wrap returns a self-contained fragment with embedded style.
func wrap(class, style, body string) string {
	return fmt.Sprintf("<div class=\"%s\">\n%s\n%s</div>", class, style, body)
}

func listItems(items []string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		fmt.Fprintf(&b, "<li>%s</li>", escape(item))
	}
	b.WriteString("</ul>")
	return b.String()
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
