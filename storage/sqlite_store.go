package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"pointage/internal/timeutil"
	"pointage/roster"
)

const dayFormat = "2006-01-02"

type SQLiteStore struct {
	db *sql.DB
}

var ErrEmployeeNotFound = errors.New("employee not found")

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	matricule TEXT NOT NULL UNIQUE,
	nom TEXT NOT NULL DEFAULT '',
	prenom TEXT NOT NULL DEFAULT '',
	poste TEXT NOT NULL DEFAULT '',
	site TEXT NOT NULL DEFAULT '',
	affaire TEXT NOT NULL DEFAULT '',
	classe TEXT NOT NULL DEFAULT '',
	affectation TEXT NOT NULL DEFAULT '',
	ville TEXT NOT NULL DEFAULT '',
	taux_logement REAL NOT NULL DEFAULT 0,
	taux_repas REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS attendances (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	employee_id INTEGER NOT NULL REFERENCES employees(id),
	date TEXT NOT NULL,
	present INTEGER NOT NULL DEFAULT 0,
	absent INTEGER NOT NULL DEFAULT 0,
	conge INTEGER NOT NULL DEFAULT 0,
	tour_repos INTEGER NOT NULL DEFAULT 0,
	repos_med INTEGER NOT NULL DEFAULT 0,
	sans_ph INTEGER NOT NULL DEFAULT 0,
	UNIQUE(employee_id, date)
);
CREATE INDEX IF NOT EXISTS idx_attendances_date ON attendances(date);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ImportTx scopes one import to one transaction: either every employee and
// attendance change of the import commits, or none does.
type ImportTx struct {
	tx *sql.Tx
}

func (s *SQLiteStore) BeginImport() (*ImportTx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}
	return &ImportTx{tx: tx}, nil
}

func (t *ImportTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit import transaction: %w", err)
	}
	return nil
}

func (t *ImportTx) Rollback() error {
	return t.tx.Rollback()
}

// Qualified so the recap/detail joins stay unambiguous.
const employeeColumns = `
	employees.id,
	employees.matricule,
	employees.nom,
	employees.prenom,
	employees.poste,
	employees.site,
	employees.affaire,
	employees.classe,
	employees.affectation,
	employees.ville,
	employees.taux_logement,
	employees.taux_repas
`

func scanEmployee(row interface{ Scan(...any) error }) (roster.Employee, error) {
	var employee roster.Employee
	err := row.Scan(
		&employee.ID,
		&employee.Matricule,
		&employee.Nom,
		&employee.Prenom,
		&employee.Poste,
		&employee.Site,
		&employee.Affaire,
		&employee.Classe,
		&employee.Affectation,
		&employee.Ville,
		&employee.TauxLogement,
		&employee.TauxRepas,
	)
	return employee, err
}

func (t *ImportTx) FindEmployeeByMatricule(matricule string) (roster.Employee, bool, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE matricule = ?;`

	employee, err := scanEmployee(t.tx.QueryRow(query, matricule))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return roster.Employee{}, false, nil
		}
		return roster.Employee{}, false, fmt.Errorf("query employee %q: %w", matricule, err)
	}
	return employee, true, nil
}

func (t *ImportTx) CreateEmployee(matricule string) (roster.Employee, error) {
	res, err := t.tx.Exec(`INSERT INTO employees (matricule) VALUES (?);`, matricule)
	if err != nil {
		return roster.Employee{}, fmt.Errorf("insert employee %q: %w", matricule, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return roster.Employee{}, fmt.Errorf("read inserted employee id: %w", err)
	}
	return roster.Employee{ID: id, Matricule: matricule}, nil
}

func (t *ImportTx) UpdateEmployee(employee roster.Employee) error {
	if employee.ID <= 0 {
		return fmt.Errorf("employee id must be > 0")
	}

	const updateStmt = `
UPDATE employees
SET nom = ?,
	prenom = ?,
	poste = ?,
	site = ?,
	affaire = ?,
	classe = ?,
	affectation = ?,
	ville = ?,
	taux_logement = ?,
	taux_repas = ?
WHERE id = ?;`

	res, err := t.tx.Exec(
		updateStmt,
		employee.Nom,
		employee.Prenom,
		employee.Poste,
		employee.Site,
		employee.Affaire,
		employee.Classe,
		employee.Affectation,
		employee.Ville,
		employee.TauxLogement,
		employee.TauxRepas,
		employee.ID,
	)
	if err != nil {
		return fmt.Errorf("update employee %d: %w", employee.ID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (t *ImportTx) GetAttendance(employeeID int64, day time.Time) (roster.Attendance, bool, error) {
	const query = `
SELECT id, employee_id, date, present, absent, conge, tour_repos, repos_med, sans_ph
FROM attendances
WHERE employee_id = ? AND date = ?;`

	var (
		attendance roster.Attendance
		dateRaw    string
		counts     [roster.FlagCount]int
	)
	err := t.tx.QueryRow(query, employeeID, day.Format(dayFormat)).Scan(
		&attendance.ID,
		&attendance.EmployeeID,
		&dateRaw,
		&counts[roster.Present],
		&counts[roster.Absent],
		&counts[roster.Conge],
		&counts[roster.TourRepos],
		&counts[roster.ReposMed],
		&counts[roster.SansPh],
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return roster.Attendance{}, false, nil
		}
		return roster.Attendance{}, false, fmt.Errorf("query attendance for employee %d on %s: %w", employeeID, day.Format(dayFormat), err)
	}

	attendance.Date, err = time.ParseInLocation(dayFormat, dateRaw, time.Local)
	if err != nil {
		return roster.Attendance{}, false, fmt.Errorf("parse attendance date %q: %w", dateRaw, err)
	}
	attendance.Flags = flagsFromCounts(counts)
	return attendance, true, nil
}

// UpsertAttendance records flags for (employeeID, day), merging with any
// stored record under the given policy.
func (t *ImportTx) UpsertAttendance(employeeID int64, day time.Time, flags roster.Flags, policy roster.MergePolicy) error {
	existing, found, err := t.GetAttendance(employeeID, day)
	if err != nil {
		return err
	}

	if !found {
		counts := flags.Counts()
		const insertStmt = `
INSERT INTO attendances (employee_id, date, present, absent, conge, tour_repos, repos_med, sans_ph)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
		if _, err := t.tx.Exec(
			insertStmt,
			employeeID,
			day.Format(dayFormat),
			counts[roster.Present],
			counts[roster.Absent],
			counts[roster.Conge],
			counts[roster.TourRepos],
			counts[roster.ReposMed],
			counts[roster.SansPh],
		); err != nil {
			return fmt.Errorf("insert attendance for employee %d on %s: %w", employeeID, day.Format(dayFormat), err)
		}
		return nil
	}

	merged := roster.Merge(existing.Flags, flags, policy)
	counts := merged.Counts()
	const updateStmt = `
UPDATE attendances
SET present = ?, absent = ?, conge = ?, tour_repos = ?, repos_med = ?, sans_ph = ?
WHERE id = ?;`
	if _, err := t.tx.Exec(
		updateStmt,
		counts[roster.Present],
		counts[roster.Absent],
		counts[roster.Conge],
		counts[roster.TourRepos],
		counts[roster.ReposMed],
		counts[roster.SansPh],
		existing.ID,
	); err != nil {
		return fmt.Errorf("update attendance %d: %w", existing.ID, err)
	}
	return nil
}

// Recap sums each flag per employee over the inclusive range. Zero bounds
// are unbounded. Employees without a record in range are omitted.
func (s *SQLiteStore) Recap(start, end time.Time) ([]roster.Summary, error) {
	query := `
SELECT ` + employeeColumns + `,
	SUM(a.present),
	SUM(a.absent),
	SUM(a.conge),
	SUM(a.tour_repos),
	SUM(a.repos_med),
	SUM(a.sans_ph)
FROM attendances a
JOIN employees ON employees.id = a.employee_id
`
	where, args := rangeFilter(start, end)
	query += where + `
GROUP BY employees.id
ORDER BY employees.matricule ASC;`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recap: %w", err)
	}
	defer rows.Close()

	summaries := make([]roster.Summary, 0, 64)
	for rows.Next() {
		var summary roster.Summary
		if err := rows.Scan(
			&summary.Employee.ID,
			&summary.Employee.Matricule,
			&summary.Employee.Nom,
			&summary.Employee.Prenom,
			&summary.Employee.Poste,
			&summary.Employee.Site,
			&summary.Employee.Affaire,
			&summary.Employee.Classe,
			&summary.Employee.Affectation,
			&summary.Employee.Ville,
			&summary.Employee.TauxLogement,
			&summary.Employee.TauxRepas,
			&summary.Totals[roster.Present],
			&summary.Totals[roster.Absent],
			&summary.Totals[roster.Conge],
			&summary.Totals[roster.TourRepos],
			&summary.Totals[roster.ReposMed],
			&summary.Totals[roster.SansPh],
		); err != nil {
			return nil, fmt.Errorf("scan recap row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recap rows: %w", err)
	}

	return summaries, nil
}

// ListEmployees returns every employee ordered by matricule.
func (s *SQLiteStore) ListEmployees() ([]roster.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY matricule ASC;`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	employees := make([]roster.Employee, 0, 64)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}

	return employees, nil
}

// ListFacts returns attendance records joined with their employees, date
// ascending then matricule ascending. Zero bounds are unbounded.
func (s *SQLiteStore) ListFacts(start, end time.Time) ([]roster.Fact, error) {
	query := `
SELECT ` + employeeColumns + `,
	a.date,
	a.present,
	a.absent,
	a.conge,
	a.tour_repos,
	a.repos_med,
	a.sans_ph
FROM attendances a
JOIN employees ON employees.id = a.employee_id
`
	where, args := rangeFilter(start, end)
	query += where + `
ORDER BY a.date ASC, employees.matricule ASC;`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attendances: %w", err)
	}
	defer rows.Close()

	facts := make([]roster.Fact, 0, 256)
	for rows.Next() {
		var (
			fact    roster.Fact
			dateRaw string
			counts  [roster.FlagCount]int
		)
		if err := rows.Scan(
			&fact.Employee.ID,
			&fact.Employee.Matricule,
			&fact.Employee.Nom,
			&fact.Employee.Prenom,
			&fact.Employee.Poste,
			&fact.Employee.Site,
			&fact.Employee.Affaire,
			&fact.Employee.Classe,
			&fact.Employee.Affectation,
			&fact.Employee.Ville,
			&fact.Employee.TauxLogement,
			&fact.Employee.TauxRepas,
			&dateRaw,
			&counts[roster.Present],
			&counts[roster.Absent],
			&counts[roster.Conge],
			&counts[roster.TourRepos],
			&counts[roster.ReposMed],
			&counts[roster.SansPh],
		); err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}

		parsed, err := time.ParseInLocation(dayFormat, dateRaw, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse attendance date %q: %w", dateRaw, err)
		}
		fact.Date = timeutil.StartOfDay(parsed)
		fact.Flags = flagsFromCounts(counts)
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance rows: %w", err)
	}

	return facts, nil
}

func rangeFilter(start, end time.Time) (string, []any) {
	conditions := ""
	args := make([]any, 0, 2)
	if !start.IsZero() {
		conditions += "WHERE a.date >= ?"
		args = append(args, start.Format(dayFormat))
	}
	if !end.IsZero() {
		if conditions == "" {
			conditions += "WHERE "
		} else {
			conditions += " AND "
		}
		conditions += "a.date <= ?"
		args = append(args, end.Format(dayFormat))
	}
	return conditions, args
}

func flagsFromCounts(counts [roster.FlagCount]int) roster.Flags {
	var flags roster.Flags
	for i, count := range counts {
		flags[i] = count > 0
	}
	return flags
}
