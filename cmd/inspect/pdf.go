package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JaimeStill/folio/pkg/formatting"
	"github.com/JaimeStill/folio/pkg/pdfcheck"
)

var (
	errInvalidPDF    = errors.New("pdf failed validation")
	errUnrecoverable = errors.New("pdf could not be recovered")
)

// ValidateCmd prints PDF diagnostics and exits non-zero for invalid files.
type ValidateCmd struct {
	File string `arg:"" type:"existingfile" help:"PDF to validate."`
}

func (c *ValidateCmd) Run(out io.Writer) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	d := pdfcheck.Validate(data)
	fmt.Fprintf(out, "%s\n", c.File)
	fmt.Fprintf(out, "  valid:     %v\n", d.IsValid)
	fmt.Fprintf(out, "  size:      %s\n", formatting.FormatBytes(d.FileSize, 1))
	fmt.Fprintf(out, "  header:    %v (%s)\n", d.HasValidHeader, d.HeaderHex)
	fmt.Fprintf(out, "  structure: %v\n", d.HasValidStructure)
	fmt.Fprintf(out, "  encrypted: %v\n", d.IsPasswordProtected)
	if d.Version != "" {
		fmt.Fprintf(out, "  version:   %s\n", d.Version)
	}
	if d.PageCount > 0 {
		fmt.Fprintf(out, "  pages:     %d\n", d.PageCount)
	}
	if d.Error != "" {
		fmt.Fprintf(out, "  error:     %s\n", d.Error)
	}
	for _, s := range d.Suggestions {
		fmt.Fprintf(out, "  - %s\n", s)
	}

	if !d.IsValid {
		return errInvalidPDF
	}
	return nil
}

// RecoverCmd writes a truncated copy of a PDF with trailing garbage removed.
type RecoverCmd struct {
	File string `arg:"" type:"existingfile" help:"PDF to recover."`
	Out  string `required:"" type:"path" help:"Destination for the recovered file."`
}

func (c *RecoverCmd) Run(out io.Writer) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	r := pdfcheck.Recover(data)
	fmt.Fprintln(out, r.Message)
	if !r.Recovered {
		return errUnrecoverable
	}

	if err := os.WriteFile(c.Out, r.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	fmt.Fprintf(out, "wrote %s (%s)\n", c.Out, formatting.FormatBytes(int64(len(r.Data)), 1))
	return nil
}
