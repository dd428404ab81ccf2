package domain

// TablePreview is the header row and first data rows of a spreadsheet,
// extracted locally before submission. Preview extraction is independent
// of the upload and must never block or alter it.
type TablePreview struct {
	Headers []string
	Rows    [][]string
}
