package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunaaoguzhann/dataforge/dberr"
)

func TestColumnDefaults(t *testing.T) {
	s := New("products")
	s.Integer("id").PrimaryKey().AutoIncrement()
	s.String("name")
	s.String("sku", 64).Unique()
	s.Decimal("price")
	s.Decimal("weight", 8, 3).Nullable()
	s.Enum("status", "draft", "live").Default("draft")

	cols := s.Structure()
	require.Len(t, cols, 6)
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
		if c.Name != "weight" {
			assert.False(t, c.Nullable, c.Name)
		}
	}
	assert.Equal(t, []string{"id", "name", "sku", "price", "weight", "status"}, names)

	id, _ := s.Column("id")
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)

	name, _ := s.Column("name")
	assert.Equal(t, DefaultStringLength, name.Length)

	sku, _ := s.Column("sku")
	assert.Equal(t, 64, sku.Length)
	assert.True(t, sku.Unique)

	price, _ := s.Column("price")
	assert.Equal(t, 10, price.Precision)
	assert.Equal(t, 2, price.Scale)

	weight, _ := s.Column("weight")
	assert.Equal(t, 8, weight.Precision)
	assert.Equal(t, 3, weight.Scale)
	assert.True(t, weight.Nullable)

	status, _ := s.Column("status")
	assert.Equal(t, []string{"draft", "live"}, status.Values)
	assert.True(t, status.HasDefault)
	assert.Equal(t, "draft", status.Default)

	assert.NoError(t, s.Err())
	assert.Empty(t, s.Modifications())
}

func TestAfterMovesColumnToModifications(t *testing.T) {
	s := New("users")
	s.Integer("id").PrimaryKey()
	s.String("email")
	s.String("nickname", 50).After("email").Nullable()

	_, inStructure := s.Column("nickname")
	assert.False(t, inStructure)
	assert.Len(t, s.Structure(), 2)

	mods := s.Modifications()
	require.Len(t, mods, 1)
	assert.Equal(t, Add, mods[0].Kind)
	assert.Equal(t, "nickname", mods[0].Column)
	assert.Equal(t, "email", mods[0].After)
	require.NotNil(t, mods[0].Definition)
	assert.Equal(t, 50, mods[0].Definition.Length)
	assert.True(t, mods[0].Definition.Nullable, "modifiers after After apply to the queued column")
}

func TestChangeKeepsColumnAndSnapshots(t *testing.T) {
	s := New("users")
	s.Text("bio").Change().Nullable()

	_, ok := s.Column("bio")
	assert.True(t, ok)

	mods := s.Modifications()
	require.Len(t, mods, 1)
	assert.Equal(t, Change, mods[0].Kind)
	assert.False(t, mods[0].Definition.Nullable)
}

func TestStandaloneModifications(t *testing.T) {
	s := New("t")
	s.String("name").RenameColumn("old", "new").DropColumn("legacy").Index("a", "b")

	assert.Len(t, s.Structure(), 1)
	mods := s.Modifications()
	require.Len(t, mods, 3)
	assert.Equal(t, Modification{Kind: Rename, From: "old", To: "new"}, mods[0])
	assert.Equal(t, Modification{Kind: Drop, Column: "legacy"}, mods[1])
	assert.Equal(t, Modification{Kind: Index, Columns: []string{"a", "b"}}, mods[2])
}

func TestForeignKeyDefaultsToID(t *testing.T) {
	s := New("posts")
	s.Integer("user_id").ForeignKey("users")
	s.Integer("editor_id").ForeignKey("users", "uid")

	c, _ := s.Column("user_id")
	assert.Equal(t, &ForeignKey{Table: "users", Column: "id"}, c.ForeignKey)
	c, _ = s.Column("editor_id")
	assert.Equal(t, &ForeignKey{Table: "users", Column: "uid"}, c.ForeignKey)
}

func TestModifierWithoutColumn(t *testing.T) {
	s := New("users")
	s.Nullable().Unique()
	s.Integer("id")

	err := s.Err()
	require.Error(t, err)
	assert.True(t, dberr.IsSchemaUsage(err))
	assert.True(t, errors.Is(err, dberr.ErrNoCurrentColumn))
	assert.Contains(t, err.Error(), "Nullable")

	id, _ := s.Column("id")
	assert.False(t, id.Nullable)
}

func TestRedeclareReplaces(t *testing.T) {
	s := New("t")
	s.String("code").Unique()
	s.Integer("code")

	require.Len(t, s.Structure(), 1)
	c, _ := s.Column("code")
	assert.Equal(t, Integer, c.Type)
	assert.False(t, c.Unique)
}
