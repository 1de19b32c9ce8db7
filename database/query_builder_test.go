package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunaaoguzhann/dataforge/dberr"
	"github.com/tunaaoguzhann/dataforge/dialect"
	"github.com/tunaaoguzhann/dataforge/schema"
)

func newMockConn(t *testing.T, d dialect.Dialect) (*Connection, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(d, db), mock
}

func TestToSQL(t *testing.T) {
	conn, _ := newMockConn(t, dialect.MySQL)

	tests := []struct {
		name  string
		build func(qb *QueryBuilder) *QueryBuilder
		sql   string
		args  []any
	}{
		{
			name:  "default projection",
			build: func(qb *QueryBuilder) *QueryBuilder { return qb.Table("users") },
			sql:   "SELECT * FROM users",
		},
		{
			name: "select columns",
			build: func(qb *QueryBuilder) *QueryBuilder {
				return qb.Table("users").Select("id", "name")
			},
			sql: "SELECT id, name FROM users",
		},
		{
			name: "or where first renders WHERE",
			build: func(qb *QueryBuilder) *QueryBuilder {
				return qb.Table("users").OrWhere("a", "=", 1).Where("b", ">", 2).OrWhere("c", "<>", 3)
			},
			sql:  "SELECT * FROM users WHERE a = ? AND b > ? OR c <> ?",
			args: []any{1, 2, 3},
		},
		{
			name: "where in expands placeholders",
			build: func(qb *QueryBuilder) *QueryBuilder {
				return qb.Table("users").Where("active", "=", true).WhereIn("id", 4, 5, 6)
			},
			sql:  "SELECT * FROM users WHERE active = ? AND id IN (?,?,?)",
			args: []any{true, 4, 5, 6},
		},
		{
			name: "joins before where",
			build: func(qb *QueryBuilder) *QueryBuilder {
				return qb.Table("posts").
					Where("posts.id", "=", 9).
					Join("users", "users.id", "=", "posts.user_id").
					LeftJoin("tags", "tags.post_id", "=", "posts.id")
			},
			sql:  "SELECT * FROM posts INNER JOIN users ON users.id = posts.user_id LEFT JOIN tags ON tags.post_id = posts.id WHERE posts.id = ?",
			args: []any{9},
		},
		{
			name: "order limit offset",
			build: func(qb *QueryBuilder) *QueryBuilder {
				return qb.Table("users").OrderBy("name").OrderBy("id", "desc").Limit(10).Offset(20)
			},
			sql: "SELECT * FROM users ORDER BY name ASC, id DESC LIMIT 10 OFFSET 20",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.build(conn.QueryBuilder()).ToSQL()
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestWhereClauseCount(t *testing.T) {
	conn, _ := newMockConn(t, dialect.MySQL)
	qb := conn.QueryBuilder().Table("t")
	for i := 0; i < 5; i++ {
		if i%2 == 0 {
			qb.OrWhere("c", "=", i)
		} else {
			qb.Where("c", "=", i)
		}
	}
	sql, args := qb.ToSQL()
	assert.Equal(t, 1, strings.Count(sql, "WHERE"))
	assert.Equal(t, 5, strings.Count(sql, "?"))
	assert.Len(t, args, 5)
	assert.True(t, strings.HasPrefix(sql, "SELECT * FROM t WHERE c = ?"))
}

func TestFirst(t *testing.T) {
	conn, mock := newMockConn(t, dialect.SQLite)
	mock.ExpectQuery("SELECT * FROM users WHERE id = ? LIMIT 1").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(5), []byte("Ada")))

	row, err := conn.QueryBuilder().Table("users").Where("id", "=", 5).First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Row{"id": int64(5), "name": "Ada"}, row)

	mock.ExpectQuery("SELECT * FROM users WHERE id = ? LIMIT 1").
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	row, err = conn.QueryBuilder().Table("users").Where("id", "=", 6).First(context.Background())
	require.NoError(t, err)
	assert.Nil(t, row)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)
	mock.ExpectQuery("SELECT id FROM users WHERE id IN (?,?) ORDER BY id ASC").
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))

	rows, err := conn.QueryBuilder().Table("users").Select("id").WhereIn("id", 1, 2).OrderBy("id").Get(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, int64(2), rows[1]["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRebindsForSQLServer(t *testing.T) {
	conn, mock := newMockConn(t, dialect.SQLServer)
	mock.ExpectQuery("SELECT * FROM users WHERE active = @p1 AND role IN (@p2,@p3)").
		WithArgs(true, "owner", "editor").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "avatar"}).
			AddRow(int64(1), []byte("owner"), nil))

	rows, err := conn.QueryBuilder().Table("users").
		Where("active", "=", true).
		WhereIn("role", "owner", "editor").
		Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Row{{"id": int64(1), "role": "owner", "avatar": nil}}, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)
	mock.ExpectQuery("SELECT COUNT(*) as count FROM users WHERE active = ? LIMIT 1").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow([]byte("42")))

	n, err := conn.QueryBuilder().Table("users").Where("active", "=", true).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	mock.ExpectQuery("SELECT COUNT(*) as count FROM empty LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}))
	n, err = conn.QueryBuilder().Table("empty").Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)
	mock.ExpectExec("INSERT INTO users (name, email) VALUES (?,?)").
		WithArgs("Ada", "ada@example.com").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := conn.QueryBuilder().Table("users").Insert(context.Background(), Data{
		{Column: "name", Value: "Ada"},
		{Column: "email", Value: "ada@example.com"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMultiple(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)
	mock.ExpectExec("INSERT INTO users (name, email) VALUES (?,?),(?,?)").
		WithArgs("Ada", "ada@example.com", "Bob", nil).
		WillReturnResult(sqlmock.NewResult(2, 2))

	err := conn.QueryBuilder().Table("users").InsertMultiple(context.Background(), []Data{
		{{Column: "name", Value: "Ada"}, {Column: "email", Value: "ada@example.com"}},
		{{Column: "name", Value: "Bob"}, {Column: "age", Value: 30}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMultipleEmpty(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)

	err := conn.QueryBuilder().Table("users").InsertMultiple(context.Background(), nil)
	assert.True(t, errors.Is(err, dberr.ErrEmptyRecords))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)
	mock.ExpectExec("UPDATE users SET name = ? WHERE id = ?").
		WithArgs("X", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := conn.QueryBuilder().Table("users").Where("id", "=", 1).
		Update(context.Background(), Data{{Column: "name", Value: "X"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRebindsForPostgres(t *testing.T) {
	conn, mock := newMockConn(t, dialect.Postgres)
	mock.ExpectExec("UPDATE users SET name = $1, email = $2 WHERE id = $3 OR id = $4").
		WithArgs("X", "x@example.com", 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))

	_, err := conn.QueryBuilder().Table("users").Where("id", "=", 1).OrWhere("id", "=", 2).
		Update(context.Background(), Data{{Column: "name", Value: "X"}, {Column: "email", Value: "x@example.com"}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)
	mock.ExpectExec("DELETE FROM sessions WHERE expired = ?").
		WithArgs(true).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM sessions").
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := conn.QueryBuilder().Table("sessions").Where("expired", "=", true).Delete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = conn.QueryBuilder().Table("sessions").Delete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	conn, mock := newMockConn(t, dialect.Postgres)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users (id SERIAL PRIMARY KEY, name VARCHAR(255) NOT NULL, meta JSONB NULL)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := schema.New("users")
	s.Integer("id").PrimaryKey().AutoIncrement()
	s.String("name")
	s.JSON("meta").Nullable()

	err := conn.QueryBuilder().Create(context.Background(), "users", s.Structure())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuickInsert(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)
	mock.ExpectQuery("SHOW COLUMNS FROM posts").
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "int(11)", "NO", "PRI", nil, "auto_increment").
			AddRow("title", "varchar(255)", "NO", "", nil, "").
			AddRow("body", "text", "NO", "", nil, "").
			AddRow("created_at", "timestamp", "YES", "", nil, "").
			AddRow("updated_at", "timestamp", "YES", "", nil, ""))
	mock.ExpectExec("INSERT INTO posts (title, body, created_at) VALUES (?,?,?)").
		WithArgs("Hello", "World", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := conn.QueryBuilder().Table("posts").QuickInsert(context.Background(), "Hello", "World")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuickInsertValueCount(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)
	mock.ExpectQuery("SHOW COLUMNS FROM posts").
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("title", "varchar(255)", "NO", "", nil, ""))

	err := conn.QueryBuilder().Table("posts").QuickInsert(context.Background(), "a", "b")
	assert.True(t, errors.Is(err, dberr.ErrValueCount))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRaw(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)
	mock.ExpectExec("TRUNCATE TABLE logs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE t SET a = ?").WithArgs(1).WillReturnError(errors.New("table is read only"))

	qb := conn.QueryBuilder().Table("ignored").Where("x", "=", 1)
	require.NoError(t, qb.Raw(context.Background(), "TRUNCATE TABLE logs"))

	err := qb.Raw(context.Background(), "UPDATE t SET a = ?", 1)
	require.Error(t, err)
	assert.True(t, dberr.IsExecution(err))
	assert.Contains(t, err.Error(), "UPDATE t SET a = ?")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoTable(t *testing.T) {
	conn, _ := newMockConn(t, dialect.MySQL)
	ctx := context.Background()

	_, err := conn.QueryBuilder().Get(ctx)
	assert.ErrorIs(t, err, dberr.ErrNoTable)
	assert.ErrorIs(t, conn.QueryBuilder().Insert(ctx, Data{{Column: "a", Value: 1}}), dberr.ErrNoTable)
	_, err = conn.QueryBuilder().Delete(ctx)
	assert.ErrorIs(t, err, dberr.ErrNoTable)
}

func TestData(t *testing.T) {
	d := DataFromMap(map[string]any{"b": 2, "a": 1})
	assert.Equal(t, []string{"a", "b"}, d.Columns())
	assert.Equal(t, []any{1, 2}, d.Values())

	d = d.Set("a", 10).Set("c", 3)
	v, ok := d.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, []string{"a", "b", "c"}, d.Columns())
}
