package importer

import (
	"sort"
	"strings"
	"time"

	"pointage/internal/textutil"
)

// Field names one canonical employee profile column.
type Field int

const (
	FieldMatricule Field = iota
	FieldNom
	FieldPrenom
	FieldPoste
	FieldSite
	FieldAffaire
	FieldClasse
	FieldAffectation
	FieldVille
	FieldTauxLogement
	FieldTauxRepas
)

// fieldVariants lists the accepted header spellings per canonical field.
// Matching happens after textutil.NormalizeToken, so case, accents, spaces,
// underscores, and punctuation never matter ("Taux_Logement", "taux
// logement", and "TAUXLOGEMENT" are the same variant).
var fieldVariants = map[Field][]string{
	FieldMatricule:    {"matricule", "id"},
	FieldNom:          {"nom", "name"},
	FieldPrenom:       {"prenom"},
	FieldPoste:        {"poste", "position"},
	FieldSite:         {"site"},
	FieldAffaire:      {"affaire"},
	FieldClasse:       {"classe"},
	FieldAffectation:  {"affectation"},
	FieldVille:        {"ville"},
	FieldTauxLogement: {"tauxlogement", "tauxlgt"},
	FieldTauxRepas:    {"tauxrepas"},
}

var variantToField = buildVariantIndex()

func buildVariantIndex() map[string]Field {
	index := make(map[string]Field, 2*len(fieldVariants))
	for field, variants := range fieldVariants {
		for _, variant := range variants {
			index[textutil.NormalizeToken(variant)] = field
		}
	}
	return index
}

// StatusColumn is one status sub-column under a date band, or one label-named
// status column in a single-header sheet.
type StatusColumn struct {
	Label  string
	Column int
}

// DateColumns groups the status columns recorded under one date band.
type DateColumns struct {
	Date     time.Time
	Statuses []StatusColumn
}

// ColumnMap is the classifier output: which columns carry profile fields and
// which carry per-date status cells. For single-header sheets without date
// bands, DateColumn points at an explicit per-row date column (-1 when
// absent) and RowStatuses lists label-named status columns.
type ColumnMap struct {
	Fields      map[Field]int
	Dates       []DateColumns
	DateColumn  int
	RowStatuses []StatusColumn
}

// HasDateBands reports whether the two-level date/status convention matched.
func (m ColumnMap) HasDateBands() bool {
	return len(m.Dates) > 0
}

// ClassifyHeaders maps raw header rows (one or two) to column roles.
//
// Two-level headers are matched top band first: blank or "Unnamed"-style top
// labels are forward-filled from the nearest label to their left, which
// reconstructs merged date bands that a reader decomposed. A column is a
// profile field when either level matches a canonical variant; the profile
// table is consulted before the date check, so a column matching both is a
// profile column. Otherwise, whichever level parses as a date supplies the
// date and the other level the status label. Unrecognized columns are
// dropped silently; duplicate field matches keep the last column.
func ClassifyHeaders(header [][]string, width int, order DateOrder) ColumnMap {
	out := ColumnMap{
		Fields:     make(map[Field]int),
		DateColumn: -1,
	}
	if width == 0 || len(header) == 0 {
		return out
	}

	// Forward-fill reconstructs merged date bands, a two-level artifact. On a
	// single header row a blank cell is just an unused column and must not
	// inherit its neighbor's label.
	top := levelRow(header, 0, width)
	var sub []string
	if len(header) > 1 {
		top = forwardFill(top)
		sub = levelRow(header, 1, width)
	} else {
		sub = make([]string, width)
	}

	byDate := make(map[time.Time]*DateColumns)
	classified := make([]bool, width)

	for col := 0; col < width; col++ {
		if field, ok := variantToField[textutil.NormalizeToken(top[col])]; ok {
			out.Fields[field] = col
			classified[col] = true
			continue
		}
		if field, ok := variantToField[textutil.NormalizeToken(sub[col])]; ok {
			out.Fields[field] = col
			classified[col] = true
			continue
		}

		if date, ok := ParseHeaderDate(top[col], order); ok {
			appendStatus(byDate, date, strings.TrimSpace(sub[col]), col)
			classified[col] = true
			continue
		}
		if date, ok := ParseHeaderDate(sub[col], order); ok {
			appendStatus(byDate, date, strings.TrimSpace(top[col]), col)
			classified[col] = true
		}
	}

	out.Dates = sortedDates(byDate)

	// Single-header fallback: with no date bands, look for an explicit
	// per-row date column and label-named status columns among whatever is
	// left. Downstream supplies the file-level date when both are missing.
	if len(out.Dates) == 0 {
		for col := 0; col < width; col++ {
			if classified[col] {
				continue
			}
			label := strings.TrimSpace(top[col])
			if textutil.NormalizeToken(label) == "date" {
				out.DateColumn = col
				continue
			}
			if _, ok := FlagForLabel(label); ok {
				out.RowStatuses = append(out.RowStatuses, StatusColumn{Label: label, Column: col})
			}
		}
	}

	// Lenient identifier heuristic: without an explicit matricule column the
	// first column is the identifier source; blank values are rejected per
	// row, not here.
	if _, ok := out.Fields[FieldMatricule]; !ok {
		out.Fields[FieldMatricule] = 0
	}

	return out
}

func levelRow(header [][]string, level, width int) []string {
	out := make([]string, width)
	if level >= len(header) {
		return out
	}
	for col := 0; col < width && col < len(header[level]); col++ {
		out[col] = header[level][col]
	}
	return out
}

func forwardFill(labels []string) []string {
	filled := make([]string, len(labels))
	last := ""
	for i, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" || strings.HasPrefix(textutil.Fold(trimmed), "unnamed") {
			filled[i] = last
			continue
		}
		filled[i] = trimmed
		last = trimmed
	}
	return filled
}

func appendStatus(byDate map[time.Time]*DateColumns, date time.Time, label string, col int) {
	group, ok := byDate[date]
	if !ok {
		group = &DateColumns{Date: date}
		byDate[date] = group
	}
	group.Statuses = append(group.Statuses, StatusColumn{Label: label, Column: col})
}

func sortedDates(byDate map[time.Time]*DateColumns) []DateColumns {
	out := make([]DateColumns, 0, len(byDate))
	for _, group := range byDate {
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
