package output

import (
	"testing"
	"time"

	"pointage/roster"
)

func TestBuildWorkbook_SheetLayout(t *testing.T) {
	t.Parallel()

	e1 := roster.Employee{ID: 1, Matricule: "E1", Nom: "Dupont", Prenom: "Ali"}
	facts := []roster.Fact{
		{Employee: e1, Date: day("2026-07-01"), Flags: flagsWith(roster.Present)},
		{Employee: e1, Date: day("2026-07-02"), Flags: flagsWith(roster.Absent)},
	}
	recap := []roster.Summary{
		{Employee: e1, Totals: [roster.FlagCount]int{1, 1, 0, 0, 0, 0}},
	}
	calendar := BuildCalendar([]roster.Employee{e1}, facts, day("2026-07-01"), day("2026-07-02"))

	file, err := BuildWorkbook(facts, recap, calendar)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	want := []string{"Détails", "Récap", "Calendrier", "Croisé"}
	if len(sheets) != len(want) {
		t.Fatalf("sheet list = %v, want %v", sheets, want)
	}
	for i, name := range want {
		if sheets[i] != name {
			t.Fatalf("sheet[%d] = %s, want %s", i, sheets[i], name)
		}
	}

	// Détails: header then one row per fact.
	if got, _ := file.GetCellValue("Détails", "A1"); got != "Date" {
		t.Errorf("Détails A1 = %q", got)
	}
	if got, _ := file.GetCellValue("Détails", "A2"); got != "01/07/2026" {
		t.Errorf("Détails A2 = %q", got)
	}
	if got, _ := file.GetCellValue("Détails", "B2"); got != "E1" {
		t.Errorf("Détails B2 = %q", got)
	}

	// Récap: profile columns then totals.
	if got, _ := file.GetCellValue("Récap", "A2"); got != "E1" {
		t.Errorf("Récap A2 = %q", got)
	}
	if got, _ := file.GetCellValue("Récap", "G2"); got != "1" {
		t.Errorf("Récap G2 = %q", got)
	}

	// Calendrier: band label on row 1, status label on row 2, counts from row 3.
	if got, _ := file.GetCellValue("Calendrier", "D1"); got != "01/07/2026" {
		t.Errorf("Calendrier D1 = %q", got)
	}
	if got, _ := file.GetCellValue("Calendrier", "D2"); got != "Présent" {
		t.Errorf("Calendrier D2 = %q", got)
	}
	if got, _ := file.GetCellValue("Calendrier", "D3"); got != "1" {
		t.Errorf("Calendrier D3 = %q", got)
	}

	// Croisé: same grid with X markers.
	if got, _ := file.GetCellValue("Croisé", "D3"); got != "X" {
		t.Errorf("Croisé D3 = %q", got)
	}
	if got, _ := file.GetCellValue("Croisé", "E3"); got != "" {
		t.Errorf("Croisé E3 = %q", got)
	}
}

func TestWriteWorkbook_SavesFile(t *testing.T) {
	t.Parallel()

	e1 := roster.Employee{ID: 1, Matricule: "E1"}
	facts := []roster.Fact{
		{Employee: e1, Date: time.Date(2026, time.July, 1, 0, 0, 0, 0, time.Local), Flags: flagsWith(roster.Present)},
	}
	calendar := BuildCalendar([]roster.Employee{e1}, facts, time.Time{}, time.Time{})

	path := t.TempDir() + "/recap.xlsx"
	if err := WriteWorkbook(path, facts, nil, calendar); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
}
