package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunaaoguzhann/dataforge/loader"
	"github.com/tunaaoguzhann/dataforge/seeder"
)

var seedsFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert fake rows described by a seeds file",
	Long: `Insert generated rows into existing tables. Each entry of the seeds file
names a table, a row count and a fake kind per column.

Examples:
  dataforge seed
  dataforge seed -f fixtures/seeds.yaml
`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		conn, err := connect(ctx)
		if err != nil {
			fmt.Println("❌ Database connection failed:", err)
			os.Exit(1)
		}
		defer conn.Close()

		seeders, err := loader.LoadSeeds(seedsFile, conn)
		if err != nil {
			fmt.Println("❌ Failed to load seeds:", err)
			conn.Close()
			os.Exit(1)
		}

		if err := seeder.Run(ctx, seeders...); err != nil {
			fmt.Println("❌ Seeding failed:", err)
			conn.Close()
			os.Exit(1)
		}
		fmt.Printf("✅ %d seeder(s) completed\n", len(seeders))
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedsFile, "file", "f", "seeds.yaml", "Seeds file")
}
