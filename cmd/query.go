package cmd

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/tunaaoguzhann/dataforge/database"
)

var (
	querySelect  []string
	queryWhere   []string
	queryOrWhere []string
	queryOrder   []string
	queryLimit   int
	queryOffset  int
	queryCount   bool
)

var queryCmd = &cobra.Command{
	Use:   "query <table>",
	Short: "Run a read-only query against a table",
	Long: `Build a SELECT with the query builder and print the rows as a table.

Conditions are written as "column operator value". Values that look like
numbers or booleans are bound as such; wrap them in quotes to keep a string.

Examples:
  dataforge query users
  dataforge query users --select id,email --where "active = 1" --order id:desc --limit 5
  dataforge query posts --where "status = 'draft'" --or-where "user_id IN 1,2,3"
  dataforge query users --where "email LIKE %@example.com" --count
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

		qb, err := buildQuery(conn.QueryBuilder(), args[0])
		if err != nil {
			fmt.Println("❌ Invalid query:", err)
			conn.Close()
			os.Exit(1)
		}

		if queryCount {
			n, err := qb.Count(ctx)
			if err != nil {
				fmt.Println("❌ Query failed:", err)
				conn.Close()
				os.Exit(1)
			}
			fmt.Println(n)
			return
		}

		rows, err := qb.Get(ctx)
		if err != nil {
			fmt.Println("❌ Query failed:", err)
			conn.Close()
			os.Exit(1)
		}
		if len(rows) == 0 {
			fmt.Println("ℹ️  No rows found")
			return
		}
		renderRows(rows, querySelect)
		fmt.Printf("📊 %d row(s)\n", len(rows))
	},
}

func init() {
	queryCmd.Flags().StringSliceVarP(&querySelect, "select", "s", nil, "Columns to select (comma separated)")
	queryCmd.Flags().StringArrayVarP(&queryWhere, "where", "w", nil, `AND condition, e.g. "age >= 18" (repeatable)`)
	queryCmd.Flags().StringArrayVar(&queryOrWhere, "or-where", nil, "OR condition (repeatable)")
	queryCmd.Flags().StringArrayVarP(&queryOrder, "order", "o", nil, "Ordering as column[:asc|desc] (repeatable)")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "l", 0, "Maximum number of rows")
	queryCmd.Flags().IntVar(&queryOffset, "offset", 0, "Rows to skip")
	queryCmd.Flags().BoolVar(&queryCount, "count", false, "Print the number of matching rows instead")
}

func buildQuery(qb *database.QueryBuilder, table string) (*database.QueryBuilder, error) {
	qb.Table(table)
	if len(querySelect) > 0 {
		qb.Select(querySelect...)
	}
	for _, w := range queryWhere {
		c, err := parseCondition(w)
		if err != nil {
			return nil, err
		}
		if c.operator == "IN" {
			qb.WhereIn(c.column, c.value.([]any)...)
			continue
		}
		qb.Where(c.column, c.operator, c.value)
	}
	for _, w := range queryOrWhere {
		c, err := parseCondition(w)
		if err != nil {
			return nil, err
		}
		if c.operator == "IN" {
			return nil, fmt.Errorf("IN is not supported in --or-where: %q", w)
		}
		qb.OrWhere(c.column, c.operator, c.value)
	}
	for _, o := range queryOrder {
		column, dir, _ := strings.Cut(o, ":")
		qb.OrderBy(column, dir)
	}
	if queryLimit > 0 {
		qb.Limit(queryLimit)
	}
	if queryOffset > 0 {
		qb.Offset(queryOffset)
	}
	return qb, nil
}

type condition struct {
	column   string
	operator string
	value    any
}

var operators = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, ">": true, "<=": true, ">=": true,
	"LIKE": true, "NOT LIKE": true, "IN": true,
}

// parseCondition splits "column operator value". The value keeps inner
// spaces. IN takes a comma separated list.
func parseCondition(s string) (condition, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return condition{}, fmt.Errorf("condition %q must look like \"column operator value\"", s)
	}

	c := condition{column: fields[0], operator: strings.ToUpper(fields[1])}
	rest := fields[2:]
	if c.operator == "NOT" && len(rest) > 1 && strings.EqualFold(rest[0], "LIKE") {
		c.operator = "NOT LIKE"
		rest = rest[1:]
	}
	if !operators[c.operator] {
		return condition{}, fmt.Errorf("unsupported operator %q in %q", fields[1], s)
	}

	raw := strings.Join(rest, " ")
	if c.operator == "IN" {
		parts := strings.Split(raw, ",")
		values := make([]any, 0, len(parts))
		for _, p := range parts {
			values = append(values, coerce(strings.TrimSpace(p)))
		}
		c.value = values
		return c, nil
	}
	c.value = coerce(raw)
	return c, nil
}

// decimal matches plain base 10 numbers. Leading zeros and prefixes such
// as 0x keep the value a string.
var decimal = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// coerce binds numbers and booleans by type. Quoted text and the literal
// NULL are handled explicitly.
func coerce(raw string) any {
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	if strings.EqualFold(raw, "null") {
		return nil
	}
	if strings.EqualFold(raw, "true") || strings.EqualFold(raw, "false") {
		return cast.ToBool(raw)
	}
	if !decimal.MatchString(raw) {
		return raw
	}
	if n, err := cast.ToInt64E(raw); err == nil {
		return n
	}
	if f, err := cast.ToFloat64E(raw); err == nil {
		return f
	}
	return raw
}

func renderRows(rows []database.Row, columns []string) {
	if len(columns) == 0 {
		for col := range rows[0] {
			columns = append(columns, col)
		}
		sort.Strings(columns)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	for _, row := range rows {
		table.Append(rowCells(row, columns))
	}
	table.Render()
}

func rowCells(row database.Row, columns []string) []string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		v, ok := row[col]
		switch {
		case !ok:
			cells[i] = ""
		case v == nil:
			cells[i] = "NULL"
		default:
			cells[i] = cast.ToString(v)
		}
	}
	return cells
}
