package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Format selects the file encoding of an exported table.
type Format string

const (
	// FormatJSON means no tabular export; the report is only returned.
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat converts s into a Format. The empty string means FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// Tabular reports whether the format produces a file.
func (f Format) Tabular() bool { return f == FormatCSV || f == FormatXLSX }

// Encoder writes a Table in one file format.
type Encoder interface {
	Extension() string
	ContentType() string
	Encode(w io.Writer, t Table) error
}

// EncoderFor returns the Encoder for a tabular format.
func EncoderFor(f Format) (Encoder, error) {
	switch f {
	case FormatCSV:
		return CSVEncoder{}, nil
	case FormatXLSX:
		return XLSXEncoder{}, nil
	}
	return nil, fmt.Errorf("export: format %q is not tabular", f)
}

// ──────────────────────────────────────────────────
// CSV
// ──────────────────────────────────────────────────

// CSVEncoder writes a header line followed by one line per row. An empty
// table writes nothing.
type CSVEncoder struct{}

// Extension implements Encoder.
func (CSVEncoder) Extension() string { return "csv" }

// ContentType implements Encoder.
func (CSVEncoder) ContentType() string { return "text/csv" }

// Encode implements Encoder.
func (CSVEncoder) Encode(w io.Writer, t Table) error {
	if t.Empty() {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case decimal.Decimal:
		return c.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// ──────────────────────────────────────────────────
// XLSX
// ──────────────────────────────────────────────────

// SheetName is the worksheet XLSXEncoder writes to.
const SheetName = "Sheet1"

// XLSXEncoder writes the table to a single worksheet with the header in
// row 1. Amounts become numeric cells. An empty table writes nothing.
type XLSXEncoder struct{}

// Extension implements Encoder.
func (XLSXEncoder) Extension() string { return "xlsx" }

// ContentType implements Encoder.
func (XLSXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Encode implements Encoder.
func (XLSXEncoder) Encode(w io.Writer, t Table) error {
	if t.Empty() {
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()

	for col, name := range t.Columns {
		if err := setCell(f, col, 1, name); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		for col, cell := range row {
			if d, ok := cell.(decimal.Decimal); ok {
				cell = d.InexactFloat64()
			}
			if err := setCell(f, col, r+2, cell); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write xlsx: %w", err)
	}
	return nil
}

// setCell writes v at zero-based column col and one-based row.
func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Errorf("export: cell name: %w", err)
	}
	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("export: set %s: %w", cell, err)
	}
	return nil
}
