package reconcile

import (
	"fmt"
	"strings"
	"time"

	"pointage/importer"
	"pointage/internal/timeutil"
	"pointage/roster"
	"pointage/storage"
)

// Options configure one import run.
type Options struct {
	Policy roster.MergePolicy
	Order  importer.DateOrder
	// FallbackDate is the file-level date used for single-header sheets
	// without a per-row date column. Zero means the processing date.
	FallbackDate time.Time
}

// Result counts what one import did. Skipped rows and malformed cells lower
// the counters; they never abort the import.
type Result struct {
	RowsRead         int
	RowsSkipped      int
	FactsProcessed   int
	EmployeesCreated int
}

// Run reconciles one classified sheet into the record store as a single
// transaction. Any store failure rolls the whole import back; cell-level
// anomalies degrade to "no fact recorded".
func Run(store *storage.SQLiteStore, sheet importer.Sheet, columns importer.ColumnMap, options Options) (*Result, error) {
	matriculeCol, ok := columns.Fields[importer.FieldMatricule]
	if !ok || sheet.Width() == 0 {
		return nil, fmt.Errorf("no identifier column recognized in %s", sheet.Source)
	}

	fallback := options.FallbackDate
	if fallback.IsZero() {
		fallback = time.Now()
	}
	fallback = timeutil.StartOfDay(fallback)

	tx, err := store.BeginImport()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if err := runRows(tx, sheet, columns, options, fallback, matriculeCol, result); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("import %s: %w", sheet.Source, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("import %s: %w", sheet.Source, err)
	}
	return result, nil
}

func runRows(tx *storage.ImportTx, sheet importer.Sheet, columns importer.ColumnMap, options Options, fallback time.Time, matriculeCol int, result *Result) error {
	for _, row := range sheet.Rows {
		result.RowsRead++

		matricule := strings.TrimSpace(importer.CellAt(row, matriculeCol))
		if matricule == "" {
			result.RowsSkipped++
			continue
		}

		employee, found, err := tx.FindEmployeeByMatricule(matricule)
		if err != nil {
			return err
		}
		if !found {
			employee, err = tx.CreateEmployee(matricule)
			if err != nil {
				return err
			}
			result.EmployeesCreated++
		}

		if applyProfile(&employee, row, columns.Fields) {
			if err := tx.UpdateEmployee(employee); err != nil {
				return err
			}
		}

		if columns.HasDateBands() {
			for _, group := range columns.Dates {
				flags := flagsForDateGroup(row, group)
				if !flags.Any() {
					continue
				}
				if err := tx.UpsertAttendance(employee.ID, group.Date, flags, options.Policy); err != nil {
					return err
				}
				result.FactsProcessed++
			}
			continue
		}

		day, ok := rowDate(row, columns, options.Order, fallback)
		if !ok {
			// Unparseable per-row date: soft error, the row records no facts.
			continue
		}
		flags := flagsForStatuses(row, columns.RowStatuses)
		if !flags.Any() {
			continue
		}
		if err := tx.UpsertAttendance(employee.ID, day, flags, options.Policy); err != nil {
			return err
		}
		result.FactsProcessed++
	}
	return nil
}

// applyProfile overwrites employee fields that carry a non-blank value in
// this row. Blank cells never erase stored data; unparseable rate values are
// skipped silently.
func applyProfile(employee *roster.Employee, row []string, fields map[importer.Field]int) bool {
	changed := false
	for field, col := range fields {
		cell := importer.ParseCell(importer.CellAt(row, col))
		if cell.Kind == importer.CellEmpty {
			continue
		}

		switch field {
		case importer.FieldTauxLogement:
			if cell.Kind == importer.CellNumber {
				employee.TauxLogement = cell.Number
				changed = true
			}
		case importer.FieldTauxRepas:
			if cell.Kind == importer.CellNumber {
				employee.TauxRepas = cell.Number
				changed = true
			}
		case importer.FieldNom:
			employee.Nom = cell.Text
			changed = true
		case importer.FieldPrenom:
			employee.Prenom = cell.Text
			changed = true
		case importer.FieldPoste:
			employee.Poste = cell.Text
			changed = true
		case importer.FieldSite:
			employee.Site = cell.Text
			changed = true
		case importer.FieldAffaire:
			employee.Affaire = cell.Text
			changed = true
		case importer.FieldClasse:
			employee.Classe = cell.Text
			changed = true
		case importer.FieldAffectation:
			employee.Affectation = cell.Text
			changed = true
		case importer.FieldVille:
			employee.Ville = cell.Text
			changed = true
		}
	}
	return changed
}

func flagsForDateGroup(row []string, group importer.DateColumns) roster.Flags {
	return flagsForStatuses(row, group.Statuses)
}

func flagsForStatuses(row []string, statuses []importer.StatusColumn) roster.Flags {
	var flags roster.Flags
	for _, status := range statuses {
		cell := importer.ParseCell(importer.CellAt(row, status.Column))
		if !importer.CellAsserted(cell) {
			continue
		}
		flag, ok := importer.FlagForLabel(status.Label)
		if !ok {
			continue
		}
		flags[flag] = true
	}
	return flags
}

func rowDate(row []string, columns importer.ColumnMap, order importer.DateOrder, fallback time.Time) (time.Time, bool) {
	if columns.DateColumn < 0 {
		return fallback, true
	}
	raw := strings.TrimSpace(importer.CellAt(row, columns.DateColumn))
	if raw == "" {
		return fallback, true
	}
	return importer.ParseHeaderDate(raw, order)
}
