package cmd

import (
	"fmt"
	"strings"
	"time"

	"pointage/internal/timeutil"
	"pointage/output"
	"pointage/storage"

	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportStart  string
	exportEnd    string
	exportDBPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full Excel report from SQLite",
	Long: `Export stored attendances as a multi-sheet Excel workbook:

- Détails: one row per employee and date with status counts
- Récap: per-employee totals over the range
- Calendrier: per-employee per-day counts, one band per day
- Croisé: the same grid with X markers instead of counts

Both range bounds are optional and inclusive; omitting them covers all
stored dates.`,
	Example: `
  # Export everything stored
  pointage export --output ./recap.xlsx

  # Export July 2026 only
  pointage export --output ./recap_juillet.xlsx --start 2026-07-01 --end 2026-07-31
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := parseRangeFlags(exportStart, exportEnd)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(exportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		facts, err := store.ListFacts(start, end)
		if err != nil {
			return err
		}
		if len(facts) == 0 {
			return fmt.Errorf("no attendance data in range")
		}

		summaries, err := store.Recap(start, end)
		if err != nil {
			return err
		}
		employees, err := store.ListEmployees()
		if err != nil {
			return err
		}

		calendar := output.BuildCalendar(employees, facts, start, end)
		if err := output.WriteWorkbook(exportOutput, facts, summaries, calendar); err != nil {
			return err
		}

		fmt.Printf("Export completed. Employees: %d, Facts: %d, Days: %d, File: %s\n",
			len(summaries), len(facts), len(calendar.Days), exportOutput)
		return nil
	},
}

func parseRangeFlags(startValue, endValue string) (time.Time, time.Time, error) {
	parse := func(name, raw string) (time.Time, error) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return time.Time{}, nil
		}
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --%s value %q (expected YYYY-MM-DD)", name, raw)
		}
		return timeutil.StartOfDay(parsed), nil
	}

	start, err := parse("start", startValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parse("end", endValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range: --start must be <= --end")
	}
	return start, end, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output .xlsx file path")
	exportCmd.Flags().StringVar(&exportStart, "start", "", "Range start YYYY-MM-DD (inclusive, optional)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "Range end YYYY-MM-DD (inclusive, optional)")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "./pointage.db", "Path to local SQLite database")

	_ = exportCmd.MarkFlagRequired("output")
}
