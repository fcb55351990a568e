package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Sheet is one parsed source file split into header rows and data rows.
type Sheet struct {
	Source string
	Header [][]string
	Rows   [][]string
}

// Width is the column count of the header band.
func (s Sheet) Width() int {
	width := 0
	for _, row := range s.Header {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// CellAt returns the raw value of one data-row cell, empty when the row is
// shorter than the header.
func CellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Options control how a source file is read and classified.
type Options struct {
	// Format forces csv or excel; inferred from the extension when empty.
	Format string
	// HeaderDepth forces one or two header rows; 0 picks automatically.
	HeaderDepth int
	Order       DateOrder
}

// Load reads a source file and classifies its headers. In automatic mode
// the two-level convention is tried first; finding zero date bands means
// the sheet is single-header, not a classification failure.
func Load(path string, options Options) (Sheet, ColumnMap, error) {
	format, err := inferFormat(path, options.Format)
	if err != nil {
		return Sheet{}, ColumnMap{}, err
	}
	reader, err := ReaderForFormat(format)
	if err != nil {
		return Sheet{}, ColumnMap{}, err
	}

	rows, err := reader.Read(path)
	if err != nil {
		return Sheet{}, ColumnMap{}, err
	}
	if len(rows) == 0 {
		return Sheet{}, ColumnMap{}, fmt.Errorf("file %s is empty", path)
	}

	depth := options.HeaderDepth
	if depth != 0 && depth != 1 && depth != 2 {
		return Sheet{}, ColumnMap{}, fmt.Errorf("unsupported header depth %d (supported: 1|2)", depth)
	}
	if depth == 2 && len(rows) < 2 {
		return Sheet{}, ColumnMap{}, fmt.Errorf("file %s has no second header row", path)
	}

	if depth == 0 {
		if len(rows) >= 2 {
			sheet := splitSheet(path, rows, 2)
			columns := ClassifyHeaders(sheet.Header, sheet.Width(), options.Order)
			if plausibleBands(columns) {
				return sheet, columns, nil
			}
		}
		depth = 1
	}

	sheet := splitSheet(path, rows, depth)
	return sheet, ClassifyHeaders(sheet.Header, sheet.Width(), options.Order), nil
}

// plausibleBands guards the automatic depth probe. A single-header sheet
// with a per-row Date column would otherwise classify as two-level: the
// first data row's date value forms a band whose only sub-label is the
// "Date" header itself. Accept the two-level split only when at least one
// status label under a band is recognizable.
func plausibleBands(columns ColumnMap) bool {
	for _, group := range columns.Dates {
		for _, status := range group.Statuses {
			if _, ok := FlagForLabel(status.Label); ok {
				return true
			}
		}
	}
	return false
}

func splitSheet(path string, rows [][]string, depth int) Sheet {
	return Sheet{
		Source: path,
		Header: rows[:depth],
		Rows:   rows[depth:],
	}
}

func inferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return "csv", nil
	case "xlsx", "xlsm", "xls":
		return "excel", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}
