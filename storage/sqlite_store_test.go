package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pointage/roster"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "pointage_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return parsed
}

func TestImportTx_CreateAndFindEmployee(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	tx, err := store.BeginImport()
	if err != nil {
		t.Fatalf("begin import: %v", err)
	}

	created, err := tx.CreateEmployee("E1")
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected non-zero employee id")
	}

	created.Nom = "Dupont"
	created.TauxRepas = 12.5
	if err := tx.UpdateEmployee(created); err != nil {
		t.Fatalf("update employee: %v", err)
	}

	found, ok, err := tx.FindEmployeeByMatricule("E1")
	if err != nil {
		t.Fatalf("find employee: %v", err)
	}
	if !ok {
		t.Fatal("expected employee to be found")
	}
	if found.Nom != "Dupont" || found.TauxRepas != 12.5 {
		t.Fatalf("unexpected employee: %+v", found)
	}

	if _, ok, err := tx.FindEmployeeByMatricule("missing"); err != nil || ok {
		t.Fatalf("expected not found, got ok=%v err=%v", ok, err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestImportTx_UpdateMissingEmployee(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	tx, err := store.BeginImport()
	if err != nil {
		t.Fatalf("begin import: %v", err)
	}
	defer tx.Rollback()

	err = tx.UpdateEmployee(roster.Employee{ID: 999, Matricule: "ghost"})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestUpsertAttendance_OrMergesFlags(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	date := day(t, "2026-07-01")

	tx, err := store.BeginImport()
	if err != nil {
		t.Fatalf("begin import: %v", err)
	}

	employee, err := tx.CreateEmployee("E1")
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}

	var present roster.Flags
	present[roster.Present] = true
	if err := tx.UpsertAttendance(employee.ID, date, present, roster.MergeOr); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	var absent roster.Flags
	absent[roster.Absent] = true
	if err := tx.UpsertAttendance(employee.ID, date, absent, roster.MergeOr); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	stored, ok, err := tx.GetAttendance(employee.ID, date)
	if err != nil {
		t.Fatalf("get attendance: %v", err)
	}
	if !ok {
		t.Fatal("expected attendance row")
	}
	if !stored.Flags[roster.Present] || !stored.Flags[roster.Absent] {
		t.Fatalf("expected both flags after or-merge, got %v", stored.Flags)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestUpsertAttendance_ReplaceDropsStoredFlags(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	date := day(t, "2026-07-01")

	tx, err := store.BeginImport()
	if err != nil {
		t.Fatalf("begin import: %v", err)
	}

	employee, err := tx.CreateEmployee("E1")
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}

	var present roster.Flags
	present[roster.Present] = true
	if err := tx.UpsertAttendance(employee.ID, date, present, roster.MergeReplace); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	var absent roster.Flags
	absent[roster.Absent] = true
	if err := tx.UpsertAttendance(employee.ID, date, absent, roster.MergeReplace); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	stored, ok, err := tx.GetAttendance(employee.ID, date)
	if err != nil {
		t.Fatalf("get attendance: %v", err)
	}
	if !ok {
		t.Fatal("expected attendance row")
	}
	if stored.Flags[roster.Present] {
		t.Fatal("expected present flag to be replaced away")
	}
	if !stored.Flags[roster.Absent] {
		t.Fatal("expected absent flag to be stored")
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestRecapAndListFacts_RangeFilter(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	tx, err := store.BeginImport()
	if err != nil {
		t.Fatalf("begin import: %v", err)
	}
	employee, err := tx.CreateEmployee("E1")
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}

	var present roster.Flags
	present[roster.Present] = true
	for _, value := range []string{"2026-07-01", "2026-07-02", "2026-08-01"} {
		if err := tx.UpsertAttendance(employee.ID, day(t, value), present, roster.MergeOr); err != nil {
			t.Fatalf("upsert %s: %v", value, err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	summaries, err := store.Recap(day(t, "2026-07-01"), day(t, "2026-07-31"))
	if err != nil {
		t.Fatalf("recap: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].Totals[roster.Present] != 2 {
		t.Fatalf("expected 2 present days in July, got %d", summaries[0].Totals[roster.Present])
	}

	all, err := store.Recap(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("recap all: %v", err)
	}
	if all[0].Totals[roster.Present] != 3 {
		t.Fatalf("expected 3 present days overall, got %d", all[0].Totals[roster.Present])
	}

	facts, err := store.ListFacts(day(t, "2026-08-01"), time.Time{})
	if err != nil {
		t.Fatalf("list facts: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("expected 1 fact from August on, got %d", len(facts))
	}
	if !facts[0].Date.Equal(day(t, "2026-08-01")) {
		t.Fatalf("unexpected fact date %v", facts[0].Date)
	}
}

func TestListEmployees_OrderedByMatricule(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	tx, err := store.BeginImport()
	if err != nil {
		t.Fatalf("begin import: %v", err)
	}
	for _, matricule := range []string{"E2", "E1", "E3"} {
		if _, err := tx.CreateEmployee(matricule); err != nil {
			t.Fatalf("create %s: %v", matricule, err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	employees, err := store.ListEmployees()
	if err != nil {
		t.Fatalf("list employees: %v", err)
	}
	if len(employees) != 3 {
		t.Fatalf("expected 3 employees, got %d", len(employees))
	}
	for i, want := range []string{"E1", "E2", "E3"} {
		if employees[i].Matricule != want {
			t.Fatalf("employees[%d] = %s, want %s", i, employees[i].Matricule, want)
		}
	}
}
