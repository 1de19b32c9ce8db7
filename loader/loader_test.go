package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunaaoguzhann/dataforge/database"
	"github.com/tunaaoguzhann/dataforge/dialect"
	"github.com/tunaaoguzhann/dataforge/runner"
	"github.com/tunaaoguzhann/dataforge/schema"
)

const migrationsYAML = `
migrations:
  - model: BlogPost
    columns:
      - {name: id, type: integer, primary_key: true, auto_increment: true}
      - {name: title, type: string, length: 120}
      - {name: status, type: enum, values: [draft, published], default: draft}
      - {name: created_at, type: timestamp, default_expr: CURRENT_TIMESTAMP}
  - table: users
    columns:
      - {name: nickname, type: string, nullable: true, after: email}
      - {name: bio, type: text, change: true}
      - {name: team_id, type: int, references: teams}
    drop: [legacy]
    rename: [{from: name, to: full_name}]
    indexes: [[email], [team_id, nickname]]
    seed:
      count: 2
      fields: {email: email, full_name: name}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTableFromModel(t *testing.T) {
	assert.Equal(t, "users", TableFromModel("User"))
	assert.Equal(t, "blog_posts", TableFromModel("BlogPost"))
	assert.Equal(t, "categories", TableFromModel("Category"))
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("String")
	require.NoError(t, err)
	assert.Equal(t, schema.Varchar, typ)

	typ, err = ParseType("bool")
	require.NoError(t, err)
	assert.Equal(t, schema.Boolean, typ)

	_, err = ParseType("geometry")
	assert.Error(t, err)
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations(writeFile(t, "migrations.yaml", migrationsYAML))
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	posts := migrations[0]
	assert.Equal(t, "blog_posts", posts.TableName())
	_, seeds := posts.(runner.Seeder)
	assert.False(t, seeds)

	s := schema.New(posts.TableName())
	posts.Up(s)
	require.NoError(t, s.Err())
	require.Len(t, s.Structure(), 4)

	title, ok := s.Column("title")
	require.True(t, ok)
	assert.Equal(t, 120, title.Length)

	status, _ := s.Column("status")
	assert.Equal(t, []string{"draft", "published"}, status.Values)
	assert.Equal(t, "draft", status.Default)

	created, _ := s.Column("created_at")
	assert.Equal(t, schema.Expr("CURRENT_TIMESTAMP"), created.Default)

	users := migrations[1]
	_, seeds = users.(runner.Seeder)
	assert.True(t, seeds)

	s = schema.New("users")
	users.Up(s)
	require.NoError(t, s.Err())

	var kinds []schema.ModificationKind
	for _, m := range s.Modifications() {
		kinds = append(kinds, m.Kind)
	}
	assert.Equal(t, []schema.ModificationKind{
		schema.Add, schema.Change, schema.Drop, schema.Rename, schema.Index, schema.Index,
	}, kinds)
	assert.Equal(t, "email", s.Modifications()[0].After)

	team, ok := s.Column("team_id")
	require.True(t, ok)
	assert.Equal(t, &schema.ForeignKey{Table: "teams", Column: "id"}, team.ForeignKey)
	_, ok = s.Column("nickname")
	assert.False(t, ok)
}

func TestLoadMigrationsErrors(t *testing.T) {
	_, err := LoadMigrations(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadMigrations(writeFile(t, "m.yaml", "migrations:\n  - columns: [{name: id, type: integer}]\n"))
	assert.ErrorContains(t, err, "table or model is required")

	_, err = LoadMigrations(writeFile(t, "m.yaml", "migrations:\n  - table: t\n    seed: {count: 1, fields: {a: shoe_size}}\n"))
	assert.ErrorContains(t, err, "seed for t")
}

func TestSeededMigrationInserts(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	conn := database.NewWithDB(dialect.MySQL, db)

	mock.ExpectExec("INSERT INTO tags (label, rank) VALUES (?,?),(?,?)").
		WithArgs("x", sqlmock.AnyArg(), "x", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 2))

	migrations, err := LoadMigrations(writeFile(t, "m.yaml",
		"migrations:\n  - table: tags\n    seed: {count: 2, fields: {label: 'pick:x', rank: 'int:1:3'}}\n"))
	require.NoError(t, err)

	seeder, ok := migrations[0].(runner.Seeder)
	require.True(t, ok)
	require.NoError(t, seeder.Seed(context.Background(), conn.QueryBuilder().Table("tags")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSeeds(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	conn := database.NewWithDB(dialect.MySQL, db)

	mock.ExpectExec("INSERT INTO roles (name) VALUES (?)").
		WithArgs("admin").
		WillReturnResult(sqlmock.NewResult(1, 1))

	seeders, err := LoadSeeds(writeFile(t, "seeds.yaml",
		"seeds:\n  - table: roles\n    count: 1\n    fields: {name: 'pick:admin'}\n  - table: empty\n    count: 0\n"), conn)
	require.NoError(t, err)
	require.Len(t, seeders, 2)
	for _, s := range seeders {
		require.NoError(t, s.Run(context.Background()))
	}
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = LoadSeeds(writeFile(t, "bad.yaml", "seeds:\n  - count: 1\n"), conn)
	assert.ErrorContains(t, err, "table is required")
}

type Account struct {
	ID        int       `db:"id,primary,auto_increment"`
	Email     string    `db:"email,length:191,unique"`
	Bio       *string   `db:"bio,type:text"`
	TeamID    int       `db:"team_id,references:teams.uid"`
	Nick      string    `db:",nullable"`
	Balance   float64   `db:"balance,precision:12,scale:4,default:0"`
	CreatedAt time.Time `db:"created_at,default_expr:CURRENT_TIMESTAMP"`
	Ignored   string
	Skipped   string `db:"-"`
}

func TestFromStruct(t *testing.T) {
	def, err := FromStruct(&Account{})
	require.NoError(t, err)
	assert.Equal(t, "accounts", def.TableName())
	require.Len(t, def.Columns, 7)

	s := schema.New(def.TableName())
	def.Up(s)
	require.NoError(t, s.Err())

	id, _ := s.Column("id")
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.Equal(t, schema.Integer, id.Type)

	email, _ := s.Column("email")
	assert.Equal(t, 191, email.Length)
	assert.True(t, email.Unique)

	bio, _ := s.Column("bio")
	assert.Equal(t, schema.Text, bio.Type)
	assert.True(t, bio.Nullable)

	team, ok := s.Column("team_id")
	require.True(t, ok)
	assert.Equal(t, &schema.ForeignKey{Table: "teams", Column: "uid"}, team.ForeignKey)

	balance, _ := s.Column("balance")
	assert.Equal(t, schema.Decimal, balance.Type)
	assert.Equal(t, 12, balance.Precision)
	assert.Equal(t, "0", balance.Default)

	nick, ok := s.Column("nick")
	require.True(t, ok)
	assert.True(t, nick.Nullable)
	assert.Equal(t, schema.Varchar, nick.Type)

	created, _ := s.Column("created_at")
	assert.Equal(t, schema.Timestamp, created.Type)
}

func TestFromStructErrors(t *testing.T) {
	_, err := FromStruct(42)
	assert.Error(t, err)

	type NoTags struct{ Name string }
	_, err = FromStruct(NoTags{})
	assert.ErrorContains(t, err, "no db tagged fields")

	type BadOption struct {
		Name string `db:"name,sparkly"`
	}
	_, err = FromStruct(BadOption{})
	assert.ErrorContains(t, err, "unknown option")
}
