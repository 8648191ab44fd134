// Command folio-inspect runs the ingestion pipeline against local files
// without a database or blob store.
//
// Usage:
//
//	folio-inspect analyze report.docx notes.txt
//	folio-inspect analyze --json --max-content-size=2MB deck.pptx
//	folio-inspect pdf validate scan.pdf
//	folio-inspect pdf recover scan.pdf --out fixed.pdf
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// CLI defines the command-line interface.
type CLI struct {
	Verbose bool `short:"v" help:"Log pipeline activity to stderr."`

	Analyze AnalyzeCmd `cmd:"" help:"Detect the type of each file and extract its content."`
	PDF     PDFCmd     `cmd:"" name:"pdf" help:"Inspect PDF structure."`
}

// PDFCmd groups the PDF subcommands.
type PDFCmd struct {
	Validate ValidateCmd `cmd:"" help:"Report structural diagnostics for a PDF."`
	Recover  RecoverCmd  `cmd:"" help:"Strip trailing data after the last end-of-file marker."`
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("folio-inspect"),
		kong.Description("Inspect documents with the Folio ingestion pipeline."),
		kong.UsageOnError(),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)
	ctx.Bind(newLogger(cli.Verbose))
	ctx.FatalIfErrorf(ctx.Run())
}
