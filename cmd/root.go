package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunaaoguzhann/dataforge/utils"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "dataforge",
	Short: "Query builder, migrations and seeders for MySQL, PostgreSQL, SQLite and SQL Server",
	Long: `dataforge is a small database toolkit.

Examples:

  dataforge init
  dataforge migrate --dry-run
  dataforge migrate
  dataforge seed
  dataforge query users --where "active = 1" --limit 10
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.LoadEnv()
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ./"+utils.DefaultConfigFile+")")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(healthCmd)
}
