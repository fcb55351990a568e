package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"pointage/roster"
)

func TestWriteRecapCSV(t *testing.T) {
	t.Parallel()

	recap := []roster.Summary{
		{
			Employee: roster.Employee{Matricule: "E1", Nom: "Dupont", Prenom: "Ali"},
			Totals:   [roster.FlagCount]int{2, 1, 0, 0, 0, 0},
		},
	}

	path := filepath.Join(t.TempDir(), "recap.csv")
	if err := WriteRecapCSV(path, recap); err != nil {
		t.Fatalf("write recap csv: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}
	if rows[1][0] != "E1" {
		t.Fatalf("unexpected first column %q", rows[1][0])
	}
}
