package importer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DoubleHeaderCSV(t *testing.T) {
	t.Parallel()

	content := "Matricule,Nom,01/07/2026,,02/07/2026,\n" +
		",,Présent,Absent,Présent,Absent\n" +
		"E1,Dupont,x,,1,\n" +
		"E2,Martin,,x,,\n"
	path := filepath.Join(t.TempDir(), "pointage_01_07_2026.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	sheet, columns, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(sheet.Header) != 2 {
		t.Fatalf("expected 2 header rows, got %d", len(sheet.Header))
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(sheet.Rows))
	}
	if !columns.HasDateBands() {
		t.Fatal("expected date bands")
	}
	if len(columns.Dates) != 2 {
		t.Fatalf("expected 2 date groups, got %d", len(columns.Dates))
	}
}

func TestLoad_SingleHeaderCSVFallsBack(t *testing.T) {
	t.Parallel()

	content := "Matricule,Nom,Date,Présent\n" +
		"E1,Dupont,01/07/2026,x\n"
	path := filepath.Join(t.TempDir(), "daily.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	sheet, columns, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(sheet.Header) != 1 {
		t.Fatalf("expected 1 header row, got %d", len(sheet.Header))
	}
	if columns.HasDateBands() {
		t.Fatal("expected no date bands")
	}
	if columns.DateColumn != 2 {
		t.Fatalf("date column = %d, want 2", columns.DateColumn)
	}
	if len(columns.RowStatuses) != 1 {
		t.Fatalf("expected 1 row status, got %d", len(columns.RowStatuses))
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, _, err := Load(path, Options{}); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLoad_DateColumnDoesNotFormPhantomBand(t *testing.T) {
	t.Parallel()

	// The first data row's date value must not be mistaken for a date band
	// during automatic depth detection.
	content := "Matricule,Date,Présent,Absent\n" +
		"E1,01/07/2026,x,\n" +
		"E2,02/07/2026,,x\n"
	path := filepath.Join(t.TempDir(), "daily.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	sheet, columns, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(sheet.Header) != 1 {
		t.Fatalf("expected 1 header row, got %d", len(sheet.Header))
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(sheet.Rows))
	}
	if columns.HasDateBands() {
		t.Fatal("expected no date bands")
	}
	if columns.DateColumn != 1 {
		t.Fatalf("date column = %d, want 1", columns.DateColumn)
	}
	if len(columns.RowStatuses) != 2 {
		t.Fatalf("expected 2 row statuses, got %d", len(columns.RowStatuses))
	}
}
