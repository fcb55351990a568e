package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"pointage/output"
	"pointage/roster"
	"pointage/storage"

	"github.com/spf13/cobra"
)

var (
	recapStart  string
	recapEnd    string
	recapOutput string
	recapDBPath string
)

var recapCmd = &cobra.Command{
	Use:   "recap",
	Short: "Show per-employee status totals for a date range",
	Long: `Aggregate stored attendances into per-employee totals, one column per
status, ordered by matricule.

Both range bounds are optional and inclusive; omitting them covers all
stored dates. With --output the recap is written as CSV instead of printed.`,
	Example: `
  # Recap over everything stored
  pointage recap

  # Recap for July 2026
  pointage recap --start 2026-07-01 --end 2026-07-31

  # Write the recap to CSV
  pointage recap --output ./recap.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := parseRangeFlags(recapStart, recapEnd)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(recapDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		summaries, err := store.Recap(start, end)
		if err != nil {
			return err
		}

		if recapOutput != "" {
			if err := output.WriteRecapCSV(recapOutput, summaries); err != nil {
				return err
			}
			fmt.Printf("Recap written. Employees: %d, File: %s\n", len(summaries), recapOutput)
			return nil
		}

		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprint(writer, "Matricule\tNom\tPrenom")
		for _, flag := range roster.AllFlags() {
			fmt.Fprintf(writer, "\t%s", flag.Label())
		}
		fmt.Fprintln(writer)
		for _, summary := range summaries {
			fmt.Fprintf(writer, "%s\t%s\t%s", summary.Employee.Matricule, summary.Employee.Nom, summary.Employee.Prenom)
			for _, count := range summary.Totals {
				fmt.Fprintf(writer, "\t%d", count)
			}
			fmt.Fprintln(writer)
		}
		return writer.Flush()
	},
}

func init() {
	rootCmd.AddCommand(recapCmd)

	recapCmd.Flags().StringVar(&recapStart, "start", "", "Range start YYYY-MM-DD (inclusive, optional)")
	recapCmd.Flags().StringVar(&recapEnd, "end", "", "Range end YYYY-MM-DD (inclusive, optional)")
	recapCmd.Flags().StringVarP(&recapOutput, "output", "o", "", "Write recap as CSV to this path instead of printing")
	recapCmd.Flags().StringVar(&recapDBPath, "db", "./pointage.db", "Path to local SQLite database")
}
