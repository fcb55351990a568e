package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pointage/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  pointage config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		}
		fmt.Println("Configuration:")
		fmt.Printf("import.merge_policy: %s\n", cfg.Import.MergePolicy)
		fmt.Printf("import.date_order: %s\n", cfg.Import.DateOrder)
		fmt.Printf("import.header_depth: %d\n", cfg.Import.HeaderDepth)
		fmt.Printf("storage.db_path: %s\n", cfg.Storage.DBPath)
		fmt.Printf("export.folder: %s\n", cfg.Export.Folder)
		fmt.Printf("upload.folder: %s\n", cfg.Upload.Folder)
		fmt.Printf("web.listen: %s\n", cfg.Web.Listen)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
