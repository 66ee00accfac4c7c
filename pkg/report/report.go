package report

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"github.com/quidome/photoinfo-go/pkg/photo"
)

// SheetName is the name of the only worksheet in a report.
const SheetName = "photoinfo"

// Columns is the fixed header row of a report.
var Columns = []string{
	"FilePath",
	"FileName",
	"DateTime",
	"Timestamp",
	"Latitude",
	"Longitude",
	"FormattedLatitude",
	"FormattedLongitude",
}

// Excel refuses column widths above 255 characters.
const maxColumnWidth = 255

// TableWriter stores rows of cells as a spreadsheet at path.
type TableWriter interface {
	WriteTable(path, sheet string, rows [][]any) error
}

// Options configures Write.
type Options struct {
	// Now returns the time used for the file name. If nil, time.Now is used.
	Now func() time.Time

	// Writer encodes the table. If nil, XLSXWriter is used.
	Writer TableWriter
}

// FileName returns the report file name for the day of now.
func FileName(now time.Time) string {
	return fmt.Sprintf("photoinfo_%s.xlsx", now.Format("20060102"))
}

// Table converts records into rows, header first, one row per record in order.
// NaN coordinates are written as the text "NaN".
func Table(records []photo.Record) [][]any {
	rows := make([][]any, 0, len(records)+1)

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	rows = append(rows, header)

	for _, r := range records {
		rows = append(rows, []any{
			r.FilePath,
			r.FileName,
			r.DateTime,
			r.Timestamp,
			r.Latitude,
			r.Longitude,
			floatCell(r.FormattedLatitude),
			floatCell(r.FormattedLongitude),
		})
	}
	return rows
}

// Write stores records in dir as FileName(now) and returns the file path.
func Write(dir string, records []photo.Record, opts Options) (string, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	w := opts.Writer
	if w == nil {
		w = XLSXWriter{}
	}

	path := filepath.Join(dir, FileName(now()))
	if err := w.WriteTable(path, SheetName, Table(records)); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}

// XLSXWriter writes Office Open XML workbooks with excelize.
type XLSXWriter struct{}

func (XLSXWriter) WriteTable(path, sheet string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	for col, width := range columnWidths(rows) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("size column %s: %w", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// columnWidths fits each column to its widest cell, in display cells.
func columnWidths(rows [][]any) []float64 {
	var widths []float64
	for _, row := range rows {
		for i, v := range row {
			for len(widths) <= i {
				widths = append(widths, 0)
			}
			w := float64(runewidth.StringWidth(fmt.Sprint(v))) + 2
			if w > widths[i] {
				widths[i] = math.Min(w, maxColumnWidth)
			}
		}
	}
	return widths
}

func floatCell(f float64) any {
	if math.IsNaN(f) {
		return "NaN"
	}
	return f
}
