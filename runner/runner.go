// Package runner applies schema definitions to a live database.
package runner

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/tunaaoguzhann/dataforge/database"
	"github.com/tunaaoguzhann/dataforge/schema"
	"github.com/tunaaoguzhann/dataforge/utils"
)

// Migration declares the desired shape of one table.
type Migration interface {
	TableName() string
	Up(s *schema.Schema)
}

// Seeder is implemented by migrations that insert rows after the table is built.
type Seeder interface {
	Seed(ctx context.Context, qb *database.QueryBuilder) error
}

// Result describes one applied migration.
type Result struct {
	Table         string
	Created       bool
	Modifications []string
	Seeded        int64
	Statements    []string
	Checksum      string
	Duration      time.Duration
}

type Option func(*Manager)

// WithOutput sends status lines to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(m *Manager) { m.out = utils.NewPrinter(w) }
}

// WithDryRun renders statements without executing them. Seeding is skipped.
func WithDryRun(dryRun bool) Option {
	return func(m *Manager) { m.dryRun = dryRun }
}

// Manager runs migrations in order. Migrations are not atomic: a failure
// leaves earlier statements applied.
type Manager struct {
	conn   *database.Connection
	out    *utils.Printer
	dryRun bool
}

func NewManager(conn *database.Connection, opts ...Option) *Manager {
	m := &Manager{conn: conn, out: utils.NewPrinter(nil)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Migrate runs each migration in order and stops at the first failure.
// Results of the migrations that completed are returned alongside the error.
func (m *Manager) Migrate(ctx context.Context, migrations []Migration) ([]Result, error) {
	results := make([]Result, 0, len(migrations))
	for _, mig := range migrations {
		res, err := m.Run(ctx, mig)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Run applies a single migration.
func (m *Manager) Run(ctx context.Context, mig Migration) (Result, error) {
	start := time.Now()
	table := mig.TableName()
	res := Result{Table: table}

	s := schema.New(table)
	mig.Up(s)
	if err := s.Err(); err != nil {
		m.out.Failure("%s: %v", table, err)
		return res, err
	}

	tb, err := NewTableBuilder(table, m.conn)
	if err != nil {
		m.out.Failure("%s: %v", table, err)
		return res, err
	}

	if err := m.apply(ctx, tb, s, &res); err != nil {
		m.out.Failure("%s: %v", table, err)
		return res, err
	}

	if seeder, ok := mig.(Seeder); ok && !m.dryRun {
		n, err := m.seed(ctx, table, seeder)
		if err != nil {
			m.out.Failure("seeding %s: %v", table, err)
			return res, err
		}
		res.Seeded = n
		if n > 0 {
			m.out.Success("'%s': %d seed rows inserted", table, n)
		}
	}

	res.Checksum = checksum(res.Statements)
	res.Duration = time.Since(start)
	return res, nil
}

func (m *Manager) apply(ctx context.Context, tb *TableBuilder, s *schema.Schema, res *Result) error {
	if len(s.Structure()) > 0 {
		stmt, err := tb.CreateStatement(s)
		if err != nil {
			return err
		}
		if m.dryRun {
			m.out.Plain("%s;", stmt)
		} else {
			if err := tb.Build(ctx, s); err != nil {
				return err
			}
			m.out.Success("'%s' table created", res.Table)
		}
		res.Created = true
		res.Statements = append(res.Statements, stmt)
	}

	for _, mod := range s.Modifications() {
		var (
			stmts []string
			err   error
		)
		if m.dryRun {
			stmts, err = tb.Statements(ctx, []schema.Modification{mod})
		} else {
			stmts, err = tb.Apply(ctx, mod)
		}
		if err != nil {
			return err
		}
		res.Statements = append(res.Statements, stmts...)

		msg := describe(mod)
		res.Modifications = append(res.Modifications, msg)
		if m.dryRun {
			for _, stmt := range stmts {
				m.out.Plain("%s;", stmt)
			}
			continue
		}
		m.out.Success("'%s': %s", res.Table, msg)
	}
	return nil
}

func (m *Manager) seed(ctx context.Context, table string, seeder Seeder) (int64, error) {
	before, err := m.conn.QueryBuilder().Table(table).Count(ctx)
	if err != nil {
		return 0, err
	}
	if err := seeder.Seed(ctx, m.conn.QueryBuilder().Table(table)); err != nil {
		return 0, err
	}
	after, err := m.conn.QueryBuilder().Table(table).Count(ctx)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

func describe(mod schema.Modification) string {
	switch mod.Kind {
	case schema.Add:
		return fmt.Sprintf("column '%s' added", mod.Column)
	case schema.Change:
		return fmt.Sprintf("column '%s' updated", mod.Column)
	case schema.Drop:
		return fmt.Sprintf("column '%s' dropped", mod.Column)
	case schema.Rename:
		return fmt.Sprintf("column '%s' renamed to '%s'", mod.From, mod.To)
	case schema.Index:
		return "index created on " + strings.Join(mod.Columns, ", ")
	}
	return fmt.Sprintf("modification applied: %s", mod.Kind)
}

func checksum(stmts []string) string {
	sum := blake3.Sum256([]byte(strings.Join(stmts, ";\n")))
	return hex.EncodeToString(sum[:])
}
