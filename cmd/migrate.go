package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tunaaoguzhann/dataforge/loader"
	"github.com/tunaaoguzhann/dataforge/runner"
)

var (
	dryRunMigrate  bool
	migrationsFile string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and modify tables from a migrations file",
	Long: `Apply every migration of the migrations file in order. The run stops at
the first failing migration; earlier tables stay as they are.

Examples:
  dataforge migrate                       # Apply migrations.yaml
  dataforge migrate -f schema/app.yaml    # Apply another file
  dataforge migrate --dry-run             # Print the SQL without running it
`,
	Run: func(cmd *cobra.Command, args []string) {
		migrations, err := loader.LoadMigrations(migrationsFile)
		if err != nil {
			fmt.Println("❌ Failed to load migrations:", err)
			os.Exit(1)
		}
		if len(migrations) == 0 {
			fmt.Println("ℹ️  No migrations found in", migrationsFile)
			return
		}

		ctx := context.Background()
		conn, err := connect(ctx)
		if err != nil {
			fmt.Println("❌ Database connection failed:", err)
			os.Exit(1)
		}
		defer conn.Close()

		start := time.Now()
		manager := runner.NewManager(conn, runner.WithDryRun(dryRunMigrate))
		results, err := manager.Migrate(ctx, migrations)
		if err != nil {
			fmt.Println("❌ Migration failed:", err)
			conn.Close()
			os.Exit(1)
		}

		if dryRunMigrate {
			fmt.Println("🔍 Dry run: no statements were executed")
			return
		}
		color.New(color.FgGreen, color.Bold).Printf("🎉 %d migration(s) applied in %s\n", len(results), time.Since(start).Round(time.Millisecond))
	},
}

func init() {
	migrateCmd.Flags().StringVarP(&migrationsFile, "file", "f", "migrations.yaml", "Migrations file")
	migrateCmd.Flags().BoolVar(&dryRunMigrate, "dry-run", false, "Preview the SQL that would be executed without applying migrations")
}
