package mutation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanReordersDependentInsertLast(t *testing.T) {
	// Provider emitted the dance insert first
	statements := []Statement{
		{RawSQL: "INSERT INTO dances (title, category_id, country_id) VALUES ('Electric Shuffle', (SELECT id FROM categories WHERE name='Hip-Hop'), (SELECT id FROM countries WHERE name='USA'))", Kind: KindDanceInsert},
		{RawSQL: "INSERT OR IGNORE INTO countries (name, code) VALUES ('USA', 'US')", Kind: KindCountryInsert},
		{RawSQL: "INSERT OR IGNORE INTO categories (name) VALUES ('Hip-Hop')", Kind: KindCategoryInsert},
	}

	planned := Plan(statements)
	require.Len(t, planned, 3)
	assert.Equal(t, KindCategoryInsert, planned[0].Kind)
	assert.Equal(t, KindCountryInsert, planned[1].Kind)
	assert.Equal(t, KindDanceInsert, planned[2].Kind)
}

func TestPlanIsStableWithinKind(t *testing.T) {
	statements := []Statement{
		{RawSQL: "INSERT OR IGNORE INTO categories (name) VALUES ('A')", Kind: KindCategoryInsert},
		{RawSQL: "INSERT OR IGNORE INTO categories (name) VALUES ('B')", Kind: KindCategoryInsert},
	}

	planned := Plan(statements)
	assert.Contains(t, planned[0].RawSQL, "'A'")
	assert.Contains(t, planned[1].RawSQL, "'B'")
}

func TestPlanDoesNotMutateInput(t *testing.T) {
	statements := []Statement{
		{RawSQL: "INSERT INTO dances (title, category_id, country_id) VALUES ('X', (SELECT id FROM categories WHERE name='C'), (SELECT id FROM countries WHERE name='K'))", Kind: KindDanceInsert},
		{RawSQL: "INSERT OR IGNORE INTO categories (name) VALUES ('C')", Kind: KindCategoryInsert},
	}

	_ = Plan(statements)
	assert.Equal(t, KindDanceInsert, statements[0].Kind)
	assert.Empty(t, statements[0].SemanticKey)
}

func TestPlanExtractsSemanticKey(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "plain title",
			sql:  "INSERT INTO dances (title, category_id, country_id) VALUES ('Electric Shuffle', (SELECT id FROM categories WHERE name='Hip-Hop'), (SELECT id FROM countries WHERE name='USA'))",
			want: "Electric Shuffle",
		},
		{
			name: "escaped quote in title",
			sql:  "INSERT INTO dances (title, category_id, country_id) VALUES ('O''Connor Reel', (SELECT id FROM categories WHERE name='Folk'), (SELECT id FROM countries WHERE name='Ireland'))",
			want: "O'Connor Reel",
		},
		{
			name: "newlines before values",
			sql:  "INSERT INTO dances (title, category_id, country_id)\nVALUES\n('Samba no pé', (SELECT id FROM categories WHERE name='Latin'), (SELECT id FROM countries WHERE name='Brazil'))",
			want: "Samba no pé",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planned := Plan([]Statement{{RawSQL: tt.sql, Kind: KindDanceInsert}})
			require.Len(t, planned, 1)
			assert.Equal(t, tt.want, planned[0].SemanticKey)
		})
	}
}

func TestPlanLeavesReferenceKeysEmpty(t *testing.T) {
	planned := Plan([]Statement{
		{RawSQL: "INSERT OR IGNORE INTO categories (name) VALUES ('Latin')", Kind: KindCategoryInsert},
	})
	assert.Empty(t, planned[0].SemanticKey)
}
