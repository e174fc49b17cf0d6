package report

import (
	"fmt"
	"io"

	"miru/internal/format"
	"miru/internal/models"

	"github.com/xuri/excelize/v2"
)

// XLSXFilename is the download name of the spreadsheet export.
const XLSXFilename = "Miru_Mushrooms_Bookings.xlsx"

const bookingsSheet = "Bookings"

var (
	xlsxHeaders = []string{
		"No.", "Farmer Name", "Telephone", "Tubes Booked",
		"Amount Paid (RWF)", "Booking Date", "Farm Location", "Delivery Date",
	}
	xlsxWidths = []float64{5, 25, 18, 14, 18, 14, 20, 14}
)

// WriteXLSX exports bookings in the given order as one sheet.
func WriteXLSX(w io.Writer, bookings []models.Booking) error {
	sw := newSheetWriter()
	defer sw.Close()

	if err := sw.UseSheet(bookingsSheet); err != nil {
		return err
	}
	if err := sw.SetWidths(xlsxWidths); err != nil {
		return err
	}
	if err := sw.WriteHeader(xlsxHeaders); err != nil {
		return err
	}
	for i, b := range bookings {
		row := []any{
			i + 1,
			b.Name,
			b.Phone,
			b.Tubes,
			b.Amount(),
			format.Date(b.BookingDate),
			b.Location,
			format.Date(b.DeliveryDate()),
		}
		if err := sw.WriteRow(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return sw.Save(w)
}

// sheetWriter writes rows sequentially into an excelize workbook.
type sheetWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{file: excelize.NewFile()}
}

// UseSheet renames the workbook's default sheet and starts writing at row 1.
func (w *sheetWriter) UseSheet(name string) error {
	// Excel limit
	if len(name) > 31 {
		name = name[:31]
	}
	if err := w.file.SetSheetName(w.file.GetSheetName(0), name); err != nil {
		return fmt.Errorf("rename sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// SetWidths sets column widths starting at column A.
func (w *sheetWriter) SetWidths(widths []float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(w.currentSheet, col, col, width); err != nil {
			return fmt.Errorf("set width of %s: %w", col, err)
		}
	}
	return nil
}

func (w *sheetWriter) WriteHeader(columns []string) error {
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	start := w.currentRow
	if err := w.WriteRow(row); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	first, _ := excelize.CoordinatesToCellName(1, start)
	last, _ := excelize.CoordinatesToCellName(len(columns), start)
	return w.file.SetCellStyle(w.currentSheet, first, last, style)
}

func (w *sheetWriter) WriteRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	cell, err := excelize.CoordinatesToCellName(1, w.currentRow)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.currentSheet, cell, &row); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

func (w *sheetWriter) Save(wr io.Writer) error {
	if _, err := w.file.WriteTo(wr); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (w *sheetWriter) Close() error {
	return w.file.Close()
}
