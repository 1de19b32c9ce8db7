package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunaaoguzhann/dataforge/dberr"
	"github.com/tunaaoguzhann/dataforge/dialect"
	"github.com/tunaaoguzhann/dataforge/schema"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", Name: "x"})
	require.Error(t, err)
	assert.True(t, dberr.IsConnection(err))
	assert.True(t, dberr.IsUnsupportedDialect(err))
}

func TestExecutionErrorKeepsQuery(t *testing.T) {
	conn, mock := newMockConn(t, dialect.MySQL)
	mock.ExpectExec("DELETE FROM users WHERE id = ?").WithArgs(1).WillReturnError(errors.New("locked"))

	_, err := conn.QueryBuilder().Table("users").Where("id", "=", 1).Delete(context.Background())
	var execErr *dberr.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "DELETE FROM users WHERE id = ?", execErr.Query)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, Config{Driver: "sqlite", Name: filepath.Join(t.TempDir(), "app.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.Ping(ctx))

	s := schema.New("users")
	s.Integer("id").PrimaryKey()
	s.String("name", 100)
	s.Boolean("active").Default(true)
	require.NoError(t, s.Err())
	require.NoError(t, conn.QueryBuilder().Create(ctx, "users", s.Structure()))

	err = conn.QueryBuilder().Table("users").InsertMultiple(ctx, []Data{
		{{Column: "id", Value: 1}, {Column: "name", Value: "Ada"}, {Column: "active", Value: true}},
		{{Column: "id", Value: 2}, {Column: "name", Value: "Bob"}, {Column: "active", Value: false}},
	})
	require.NoError(t, err)

	row, err := conn.QueryBuilder().Table("users").Where("id", "=", 2).First(ctx)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Bob", row["name"])

	n, err := conn.QueryBuilder().Table("users").Where("id", "=", 1).
		Update(ctx, Data{{Column: "name", Value: "Ada L."}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, conn.QueryBuilder().Table("users").QuickInsert(ctx, "Cy", true))

	count, err := conn.QueryBuilder().Table("users").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	n, err = conn.QueryBuilder().Table("users").Where("name", "=", "Bob").Delete(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := conn.QueryBuilder().Table("users").Select("name").OrderBy("id").Get(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ada L.", rows[0]["name"])
	assert.Equal(t, "Cy", rows[1]["name"])

	missing, err := conn.QueryBuilder().Table("users").Where("id", "=", 99).First(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
