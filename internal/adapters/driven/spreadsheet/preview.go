// Package spreadsheet reads local Excel files for pre-submission preview.
package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/halide-labs/partlens-cli/internal/core/domain"
	"github.com/halide-labs/partlens-cli/internal/core/ports/driven"
)

// DefaultPreviewRows is how many data rows a preview shows.
const DefaultPreviewRows = 5

// Ensure Reader implements the interface.
var _ driven.SpreadsheetReader = (*Reader)(nil)

// Reader extracts the header row and first data rows of the first sheet
// of an Excel workbook. It reads the file independently of submission
// and never holds it open.
type Reader struct{}

// NewReader creates a spreadsheet reader.
func NewReader() *Reader { return &Reader{} }

// Preview returns the headers and up to maxRows data rows, padding short
// previews with empty rows so the table shape is stable.
func (r *Reader) Preview(path string, maxRows int) (*domain.TablePreview, error) {
	if maxRows <= 0 {
		maxRows = DefaultPreviewRows
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &domain.TablePreview{}, nil
	}

	headers := rows[0]
	data := rows[1:]
	if len(data) > maxRows {
		data = data[:maxRows]
	}

	preview := &domain.TablePreview{Headers: headers}
	for _, row := range data {
		preview.Rows = append(preview.Rows, padRow(row, len(headers)))
	}
	for len(preview.Rows) < maxRows {
		preview.Rows = append(preview.Rows, make([]string, len(headers)))
	}
	return preview, nil
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
