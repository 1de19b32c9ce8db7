package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tunaaoguzhann/dataforge/introspect"
)

var describeCmd = &cobra.Command{
	Use:   "describe <table>",
	Short: "Show the live columns of a table",
	Long: `Print the columns of a table as the database reports them.

Examples:
  dataforge describe users
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		conn, err := connect(ctx)
		if err != nil {
			fmt.Println("❌ Database connection failed:", err)
			os.Exit(1)
		}
		defer conn.Close()

		columns, err := introspect.New(conn, conn.Dialect()).Columns(ctx, args[0])
		if err != nil {
			fmt.Println("❌ Describe failed:", err)
			conn.Close()
			os.Exit(1)
		}
		if len(columns) == 0 {
			fmt.Printf("⚠️  Table '%s' not found or has no columns\n", args[0])
			return
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Column", "Type", "Null", "Default", "Key", "Extra"})
		table.SetBorder(false)
		for _, c := range columns {
			table.Append(describeRow(c))
		}
		table.Render()
	},
}

func describeRow(c introspect.ColumnInfo) []string {
	null := "NO"
	if c.Nullable {
		null = "YES"
	}
	def := "NULL"
	if c.Default != nil {
		def = *c.Default
	}
	return []string{c.Name, c.Type, null, def, c.Key, c.Extra}
}
