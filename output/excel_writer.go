package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"pointage/roster"
)

const (
	detailSheet   = "Détails"
	recapSheet    = "Récap"
	calendarSheet = "Calendrier"
	crossSheet    = "Croisé"
)

// Fill colors cycled per date band, and the distinct fill closing the totals
// group. Cosmetic only; the column/row shape is the contract.
var (
	bandPalette = []string{"DDEBF7", "E2EFDA", "FCE4D6", "FFF2CC"}
	totalsFill  = "D9D9D9"
)

var detailHeaders = []string{"Date", "Matricule", "Nom", "Prénom", "Poste", "Site", "Affaire"}
var recapHeaders = []string{"Matricule", "Nom", "Prénom", "Poste", "Site", "Affaire"}
var calendarProfileHeaders = []string{"Matricule", "Nom", "Prénom"}

type workbookStyles struct {
	header int
	bands  []int
	totals int
}

// BuildWorkbook assembles the export workbook: a Détails sheet (one row per
// attendance fact), a Récap sheet (summed flags per employee), a Calendrier
// sheet (one six-flag group per day plus totals), and a Croisé sheet (an "X"
// per asserted date×status cell).
func BuildWorkbook(facts []roster.Fact, recap []roster.Summary, calendar Calendar) (*excelize.File, error) {
	file := excelize.NewFile()

	styles, err := newWorkbookStyles(file)
	if err != nil {
		return nil, err
	}

	file.SetSheetName(file.GetSheetName(0), detailSheet)
	if err := writeDetailSheet(file, styles, facts); err != nil {
		return nil, err
	}
	if err := writeRecapSheet(file, styles, recap); err != nil {
		return nil, err
	}
	if err := writeCalendarSheet(file, styles, calendarSheet, calendar, writeFlagCounts); err != nil {
		return nil, err
	}
	if err := writeCalendarSheet(file, styles, crossSheet, calendar, writeFlagMarkers); err != nil {
		return nil, err
	}

	return file, nil
}

// WriteWorkbook builds the workbook and saves it to path.
func WriteWorkbook(path string, facts []roster.Fact, recap []roster.Summary, calendar Calendar) error {
	file, err := BuildWorkbook(facts, recap, calendar)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}

func newWorkbookStyles(file *excelize.File) (workbookStyles, error) {
	styles := workbookStyles{}

	header, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    headerBorder(),
	})
	if err != nil {
		return styles, fmt.Errorf("create header style: %w", err)
	}
	styles.header = header

	for _, color := range bandPalette {
		band, err := file.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    headerBorder(),
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return styles, fmt.Errorf("create band style: %w", err)
		}
		styles.bands = append(styles.bands, band)
	}

	totals, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    headerBorder(),
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{totalsFill}},
	})
	if err != nil {
		return styles, fmt.Errorf("create totals style: %w", err)
	}
	styles.totals = totals

	return styles, nil
}

func headerBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func writeDetailSheet(file *excelize.File, styles workbookStyles, facts []roster.Fact) error {
	headers := append([]string{}, detailHeaders...)
	for _, flag := range roster.AllFlags() {
		headers = append(headers, flag.Label())
	}
	if err := writeHeaderRow(file, detailSheet, 1, headers, styles.header); err != nil {
		return err
	}

	for i, fact := range facts {
		counts := fact.Flags.Counts()
		values := []any{
			fact.Date.Format("02/01/2006"),
			fact.Employee.Matricule,
			fact.Employee.Nom,
			fact.Employee.Prenom,
			fact.Employee.Poste,
			fact.Employee.Site,
			fact.Employee.Affaire,
		}
		for _, count := range counts {
			values = append(values, count)
		}
		if err := writeRow(file, detailSheet, i+2, values); err != nil {
			return err
		}
	}

	return setColumnWidths(file, detailSheet, len(headers))
}

func writeRecapSheet(file *excelize.File, styles workbookStyles, recap []roster.Summary) error {
	if _, err := file.NewSheet(recapSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", recapSheet, err)
	}

	headers := append([]string{}, recapHeaders...)
	for _, flag := range roster.AllFlags() {
		headers = append(headers, flag.Label())
	}
	if err := writeHeaderRow(file, recapSheet, 1, headers, styles.header); err != nil {
		return err
	}

	for i, summary := range recap {
		values := []any{
			summary.Employee.Matricule,
			summary.Employee.Nom,
			summary.Employee.Prenom,
			summary.Employee.Poste,
			summary.Employee.Site,
			summary.Employee.Affaire,
		}
		for _, total := range summary.Totals {
			values = append(values, total)
		}
		if err := writeRow(file, recapSheet, i+2, values); err != nil {
			return err
		}
	}

	return setColumnWidths(file, recapSheet, len(headers))
}

// writeCalendarSheet lays out the shared calendar shape: profile columns,
// one merged six-column band per day (fills cycling through the palette),
// and a merged Totaux band. cellValue renders one six-flag group.
func writeCalendarSheet(file *excelize.File, styles workbookStyles, sheet string, calendar Calendar, cellValue func([roster.FlagCount]int) []any) error {
	if _, err := file.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	profileWidth := len(calendarProfileHeaders)
	for i, header := range calendarProfileHeaders {
		if err := setBandCell(file, sheet, i+1, 1, header, styles.header); err != nil {
			return err
		}
		// Profile headers span both header rows.
		topCell, _ := excelize.CoordinatesToCellName(i+1, 1)
		bottomCell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := file.MergeCell(sheet, topCell, bottomCell); err != nil {
			return fmt.Errorf("merge header cell %s: %w", topCell, err)
		}
	}

	for dayIdx, day := range calendar.Days {
		startCol := profileWidth + dayIdx*roster.FlagCount + 1
		style := styles.bands[dayIdx%len(styles.bands)]
		if err := writeBand(file, sheet, startCol, day.Format("02/01/2006"), style); err != nil {
			return err
		}
	}

	totalsCol := profileWidth + len(calendar.Days)*roster.FlagCount + 1
	if err := writeBand(file, sheet, totalsCol, "Totaux", styles.totals); err != nil {
		return err
	}

	for rowIdx, row := range calendar.Rows {
		values := []any{row.Employee.Matricule, row.Employee.Nom, row.Employee.Prenom}
		for _, counts := range row.Days {
			values = append(values, cellValue(counts)...)
		}
		values = append(values, cellValue(row.Totals)...)
		if err := writeRow(file, sheet, rowIdx+3, values); err != nil {
			return err
		}
	}

	lastCol := totalsCol + roster.FlagCount - 1
	return setColumnWidths(file, sheet, lastCol)
}

// writeBand merges the six columns of one group on row 1 and labels the
// status sub-columns on row 2, both with the given style.
func writeBand(file *excelize.File, sheet string, startCol int, label string, style int) error {
	if err := setBandCell(file, sheet, startCol, 1, label, style); err != nil {
		return err
	}

	firstCell, _ := excelize.CoordinatesToCellName(startCol, 1)
	lastCell, _ := excelize.CoordinatesToCellName(startCol+roster.FlagCount-1, 1)
	if err := file.MergeCell(sheet, firstCell, lastCell); err != nil {
		return fmt.Errorf("merge band %s: %w", firstCell, err)
	}
	if err := file.SetCellStyle(sheet, firstCell, lastCell, style); err != nil {
		return fmt.Errorf("style band %s: %w", firstCell, err)
	}

	for i, flag := range roster.AllFlags() {
		if err := setBandCell(file, sheet, startCol+i, 2, flag.Label(), style); err != nil {
			return err
		}
	}
	return nil
}

func setBandCell(file *excelize.File, sheet string, col, row int, value string, style int) error {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	if err := file.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	if err := file.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("style cell %s: %w", cell, err)
	}
	return nil
}

func writeFlagCounts(counts [roster.FlagCount]int) []any {
	out := make([]any, roster.FlagCount)
	for i, count := range counts {
		out[i] = count
	}
	return out
}

func writeFlagMarkers(counts [roster.FlagCount]int) []any {
	out := make([]any, roster.FlagCount)
	for i, count := range counts {
		if count > 0 {
			out[i] = "X"
		} else {
			out[i] = ""
		}
	}
	return out
}

func writeHeaderRow(file *excelize.File, sheet string, row int, headers []string, style int) error {
	for col, header := range headers {
		if err := setBandCell(file, sheet, col+1, row, header, style); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(file *excelize.File, sheet string, row int, values []any) error {
	for col, value := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := file.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set excel value %s: %w", cell, err)
		}
	}
	return nil
}

func setColumnWidths(file *excelize.File, sheet string, lastCol int) error {
	nameCol, _ := excelize.ColumnNumberToName(min(3, lastCol))
	if err := file.SetColWidth(sheet, "A", nameCol, 16); err != nil {
		return fmt.Errorf("set column widths on %s: %w", sheet, err)
	}
	if lastCol > 3 {
		firstFlag, _ := excelize.ColumnNumberToName(4)
		lastName, _ := excelize.ColumnNumberToName(lastCol)
		if err := file.SetColWidth(sheet, firstFlag, lastName, 10); err != nil {
			return fmt.Errorf("set column widths on %s: %w", sheet, err)
		}
	}
	return nil
}
