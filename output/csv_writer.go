package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"pointage/roster"
)

// WriteRecapCSV writes the recap table (profile columns then the six status
// totals) to path.
func WriteRecapCSV(path string, recap []roster.Summary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := append([]string{}, recapHeaders...)
	for _, flag := range roster.AllFlags() {
		headers = append(headers, flag.Label())
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, summary := range recap {
		row := []string{
			summary.Employee.Matricule,
			summary.Employee.Nom,
			summary.Employee.Prenom,
			summary.Employee.Poste,
			summary.Employee.Site,
			summary.Employee.Affaire,
		}
		for _, total := range summary.Totals {
			row = append(row, strconv.Itoa(total))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", summary.Employee.Matricule, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output %s: %w", path, err)
	}
	return nil
}
