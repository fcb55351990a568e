package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pointage configuration file values.",
	Long: `Create, edit, display, and delete the pointage configuration file.

The configuration stores application-wide values:
- import.merge_policy / import.date_order / import.header_depth
- storage.db_path
- export.folder / upload.folder
- web.listen`,
	Example: `
  # Create default config in $HOME/.pointage.yaml
  pointage config create

  # Show active config and source file
  pointage config show

  # Open active config in editor (creates example if missing)
  pointage config edit

  # Delete active config file
  pointage config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
