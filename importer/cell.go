package importer

import (
	"strconv"
	"strings"
)

// CellKind tags the parsed value of one spreadsheet cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
)

// Cell is the tagged variant every raw cell is reduced to before it reaches
// the status normalizer or a rate field: empty, number, or free text.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
}

// ParseCell classifies a raw cell string. A trimmed value that parses as a
// float (decimal comma accepted) becomes a number; everything else non-empty
// stays text.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: CellEmpty}
	}

	cleaned := strings.ReplaceAll(trimmed, ",", ".")
	if number, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return Cell{Kind: CellNumber, Number: number, Text: trimmed}
	}

	return Cell{Kind: CellText, Text: trimmed}
}
