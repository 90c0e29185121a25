// Package export renders submissions for download.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/unclebandit/mailto-campaigns/internal/model"
)

// Header is the first CSV line and the first XLSX row.
var Header = []string{"Name", "Email", "Place", "City", "Region", "Country", "IP Address", "Created At"}

const (
	CSVFilename  = "email_requests.csv"
	XLSXFilename = "email_requests.xlsx"
	sheetName    = "Submissions"
)

func record(s *model.Submission) []string {
	return []string{
		s.Name,
		s.Email,
		s.Place,
		deref(s.City),
		deref(s.Region),
		deref(s.Country),
		s.IPAddress,
		s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV writes every data field quoted with inner quotes doubled, so a
// standard CSV reader recovers each value exactly.
func WriteCSV(w io.Writer, rows []*model.Submission) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		return err
	}
	for _, s := range rows {
		fields := record(s)
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(Quote(f))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Quote wraps v in double quotes and doubles any quote inside it.
func Quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// WriteXLSX writes the same rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []*model.Submission) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeRow(f, 1, Header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, s := range rows {
		if err := writeRow(f, i+2, record(s)); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(Header))
	if err := f.SetColWidth(sheetName, "A", lastCol, 20); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheetName, cell, &cells)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
