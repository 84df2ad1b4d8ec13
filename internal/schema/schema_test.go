package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDDLRequirementsSQLite(t *testing.T) {
	ddl, err := Requirements.DDL(SQLite)
	require.NoError(t, err)

	want := `CREATE TABLE IF NOT EXISTS "requirements" (
    "recipe_id" TEXT NOT NULL,
    "ingredient_id" TEXT NOT NULL,
    "quantity" TEXT DEFAULT '',
    "optional" BOOLEAN DEFAULT 0,
    "group" TEXT DEFAULT '',
    PRIMARY KEY ("recipe_id", "ingredient_id"))`
	assert.Equal(t, want, ddl)
}

func TestDDLIsDeterministicPerDialect(t *testing.T) {
	for _, m := range Models {
		first, err := m.DDL(Postgres)
		require.NoError(t, err)
		second, err := m.DDL(Postgres)
		require.NoError(t, err)
		assert.Equal(t, first, second, m.Table)
	}

	ddl, err := Ingredients.DDL(Postgres)
	require.NoError(t, err)
	assert.Contains(t, ddl, `"dairy" BOOLEAN DEFAULT FALSE`)
	assert.Contains(t, ddl, `"name" TEXT NOT NULL`)
	assert.Contains(t, ddl, `PRIMARY KEY ("id")`)
}

func TestModelsRegistry(t *testing.T) {
	require.Len(t, Models, 6)

	keys := Tags.PrimaryKey()
	assert.Equal(t, []*Field{Tags.RecipeID, Tags.LabelID}, keys)

	f, ok := Recipes.Model.Field("name")
	require.True(t, ok)
	assert.Same(t, Recipes.Name, f)
	assert.Equal(t, "recipes.name", f.Qualified())
	assert.Equal(t, "recipes__name", f.Alias())
}

func TestNewJoinRejectsForeignFields(t *testing.T) {
	_, err := NewJoin(Dependencies.Model, Recipes.Model, Recipes.ID, Dependencies.Requisite)
	require.Error(t, err)

	j, err := NewJoin(Dependencies.Model, Recipes.Model, Dependencies.Requisite, Recipes.ID)
	require.NoError(t, err)
	assert.Len(t, Fields(j), len(Dependencies.Fields())+len(Recipes.Fields()))
	assert.True(t, Contains(j, Recipes.Name))
	assert.False(t, Contains(j, Labels.Name))
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fajitas", "fajitas"},
		{"Pico de Gallo", "pico_de_gallo"},
		{"Jalapeño", "jalapeno"},
		{"  Crème Brûlée ", "creme_brulee"},
		{"Mom's Chili", "mom_s_chili"},
		{"tex-mex", "tex-mex"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Simplify(tt.in))
		})
	}
}

func TestNewIDDependsOnTime(t *testing.T) {
	original := now
	t.Cleanup(func() { now = original })

	now = func() time.Time { return time.Unix(0, 1) }
	first := NewID("Fajitas")
	now = func() time.Time { return time.Unix(0, 2) }
	second := NewID("Fajitas")

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}

func TestCoerce(t *testing.T) {
	v, err := Ingredients.Dairy.Coerce(int64(1))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Ingredients.Dairy.Coerce(false)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = Recipes.Name.Coerce([]byte("Horchata"))
	require.NoError(t, err)
	assert.Equal(t, "Horchata", v)

	v, err = Recipes.Name.Coerce(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = Ingredients.Meat.Coerce("definitely")
	assert.Error(t, err)
}

func TestRecordNamedKeepsJoinedColumnsApart(t *testing.T) {
	rec := Record{
		Recipes.ID:              "r1",
		Recipes.Name:            "Fajitas",
		Dependencies.RequiredBy: "r0",
		Dependencies.Quantity:   "1 cup",
	}
	named := rec.Named()
	assert.Equal(t, "r1", named["id"])
	assert.Equal(t, "Fajitas", named["name"])
	assert.Equal(t, "1 cup", named["quantity"])

	projected := rec.Project([]*Field{Recipes.ID})
	assert.Equal(t, Record{Recipes.ID: "r1"}, projected)
	assert.Equal(t, "Fajitas", rec.String(Recipes.Name))
	assert.False(t, rec.Bool(Dependencies.Optional))
}
