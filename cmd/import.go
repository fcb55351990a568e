package cmd

import (
	"fmt"
	"strings"
	"time"

	"pointage/config"
	"pointage/importer"
	"pointage/reconcile"
	"pointage/roster"
	"pointage/storage"

	"github.com/spf13/cobra"
)

var (
	importInputs []string
	importFormat string
	importPolicy string
	importOrder  string
	importDepth  int
	importDate   string
	importDBPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import attendance sheets into a local SQLite database",
	Long: `Read attendance sheets, classify their headers, and reconcile every
recognized per-employee per-date status into SQLite.

Double-header sheets carry one date band per calendar day with one status
sub-column each. Single-header sheets may carry an explicit Date column and
label-named status columns; without a Date column every row is assigned the
file date, taken from --date, the file name, or today, in that order.

When --format is omitted, format is inferred from each input file extension.`,
	Example: `
  # Import multiple double-header Excel files
  pointage import -i pointage_01_07_2026.xlsx -i pointage_02_07_2026.xlsx --db ./pointage.db

  # Import a single-header CSV with an explicit file date
  pointage import -i daily.csv --format csv --date 2026-07-01

  # Replace stored statuses instead of merging
  pointage import -i corrections.xlsx --policy replace

  # Import a month-first US sheet
  pointage import -i us_sheet.xlsx --order mdy

  # Import with custom config file
  pointage --configFile ./custom-pointage.yaml import -i ./sheet.xlsx --db ./pointage.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		policy, err := roster.ParseMergePolicy(flagOrDefault(importPolicy, cfg.Import.MergePolicy))
		if err != nil {
			return err
		}
		order, err := importer.ParseDateOrder(flagOrDefault(importOrder, cfg.Import.DateOrder))
		if err != nil {
			return err
		}
		depth := importDepth
		if !cmd.Flags().Changed("depth") {
			depth = cfg.Import.HeaderDepth
		}

		var explicitDate time.Time
		if strings.TrimSpace(importDate) != "" {
			explicitDate, err = time.ParseInLocation("2006-01-02", strings.TrimSpace(importDate), time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date value %q (expected YYYY-MM-DD)", importDate)
			}
		}

		store, err := storage.OpenSQLite(importDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		total := reconcile.Result{}
		for _, input := range importInputs {
			sheet, columns, err := importer.Load(input, importer.Options{
				Format:      importFormat,
				HeaderDepth: depth,
				Order:       order,
			})
			if err != nil {
				return err
			}

			fallback := explicitDate
			if fallback.IsZero() {
				fallback = importer.DateFromFilename(input, time.Now())
			}

			result, err := reconcile.Run(store, sheet, columns, reconcile.Options{
				Policy:       policy,
				Order:        order,
				FallbackDate: fallback,
			})
			if err != nil {
				return err
			}

			total.RowsRead += result.RowsRead
			total.RowsSkipped += result.RowsSkipped
			total.FactsProcessed += result.FactsProcessed
			total.EmployeesCreated += result.EmployeesCreated
		}

		fmt.Printf("Import completed. Files: %d, Rows read: %d, Rows skipped: %d, Facts processed: %d, Employees created: %d\n",
			len(importInputs),
			total.RowsRead,
			total.RowsSkipped,
			total.FactsProcessed,
			total.EmployeesCreated,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVar(&importPolicy, "policy", "", "Merge policy for already-stored dates: or|replace (default from config)")
	importCmd.Flags().StringVar(&importOrder, "order", "", "Header date order: dmy|mdy (default from config)")
	importCmd.Flags().IntVar(&importDepth, "depth", 0, "Header depth: 0 auto, 1 single, 2 double (default from config)")
	importCmd.Flags().StringVar(&importDate, "date", "", "File-level date YYYY-MM-DD for sheets without per-row dates")
	importCmd.Flags().StringVar(&importDBPath, "db", "./pointage.db", "Path to local SQLite database")

	_ = importCmd.MarkFlagRequired("input")
}

func flagOrDefault(flagValue, configValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return configValue
}
