package pdfcheck

const (
	smallFileThreshold = 1000
	largeFileThreshold = 500 * 1024
	hugeFileThreshold  = 1024 * 1024
)

func suggest(d Diagnostics) []string {
	s := []string{}

	if d.IsPasswordProtected {
		s = append(s,
			"Remove the password protection from the PDF and upload it again.",
			"Most PDF readers can save an unprotected copy once the password is entered.",
		)
	}

	if !d.HasValidHeader {
		s = append(s,
			"The file does not start with a PDF header and is probably not a PDF.",
			"Check that the file extension matches the actual file type.",
		)
	}

	if d.HasValidHeader && !d.HasValidStructure {
		s = append(s,
			"The PDF appears to be corrupted or incomplete.",
			"Re-export the document from its source application or restore it from a backup, then upload it again.",
		)
	}

	if d.FileSize < smallFileThreshold {
		s = append(s, "The file is very small; the upload may have been interrupted.")
	}

	if d.FileSize > largeFileThreshold {
		s = append(s, "Open the file in a PDF reader to confirm it displays correctly.")
	}

	if d.FileSize > hugeFileThreshold {
		s = append(s, "Large PDFs with embedded images or fonts extract poorly; re-save with compressed images or convert to a simpler format.")
	}

	return s
}
