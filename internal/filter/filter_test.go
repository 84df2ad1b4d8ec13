package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knife/internal/schema"
)

func TestSQLEmptyFilterHasNoPredicate(t *testing.T) {
	p, err := SQL(nil, Exact)
	require.NoError(t, err)
	assert.True(t, p.Empty())

	p, err = SQL([]schema.Filter{{}, {}}, Substring)
	require.NoError(t, err)
	assert.True(t, p.Empty())
	assert.Empty(t, p.Params)
}

func TestSQLCombinesGroupsWithOr(t *testing.T) {
	r := schema.Recipes
	p, err := SQL([]schema.Filter{
		{r.Name: "Fajitas", r.Author: "jb"},
		{r.Name: "Horchata"},
	}, Exact)
	require.NoError(t, err)

	assert.Equal(t,
		`("recipes"."author" = @recipes__author_0 AND "recipes"."name" = @recipes__name_0) OR ("recipes"."name" = @recipes__name_1)`,
		p.Clause)
	assert.Equal(t, map[string]any{
		"recipes__author_0": "jb",
		"recipes__name_0":   "Fajitas",
		"recipes__name_1":   "Horchata",
	}, p.Params)
}

func TestSQLSubstringEscapesWildcards(t *testing.T) {
	r := schema.Recipes
	p, err := SQL([]schema.Filter{{r.Name: "50%_OFF"}}, Substring)
	require.NoError(t, err)

	assert.Equal(t, `(LOWER("recipes"."name") LIKE @recipes__name_0 ESCAPE '\')`, p.Clause)
	assert.Equal(t, `%50\%\_off%`, p.Params["recipes__name_0"])
	assert.NotContains(t, p.Clause, "50")
}

func TestSQLSubstringFallsBackToEqualityForBooleans(t *testing.T) {
	i := schema.Ingredients
	p, err := SQL([]schema.Filter{{i.Dairy: true}}, Substring)
	require.NoError(t, err)
	assert.Equal(t, `("ingredients"."dairy" = @ingredients__dairy_0)`, p.Clause)
	assert.Equal(t, true, p.Params["ingredients__dairy_0"])
}

func TestSQLNilMeansIsNull(t *testing.T) {
	r := schema.Recipes
	p, err := SQL([]schema.Filter{{r.SimpleName: nil}}, Exact)
	require.NoError(t, err)
	assert.Equal(t, `("recipes"."simple_name" IS NULL)`, p.Clause)
	assert.Empty(t, p.Params)
}

func TestCompileMatchesSQLSemantics(t *testing.T) {
	r := schema.Recipes
	fajitas := schema.Record{r.ID: "f1", r.Name: "Fajitas", r.Author: "jb"}
	horchata := schema.Record{r.ID: "h1", r.Name: "Horchata", r.Author: ""}

	match := Compile([]schema.Filter{{r.Name: "Fajitas", r.Author: "jb"}, {r.ID: "h1"}}, Exact)
	assert.True(t, match(fajitas))
	assert.True(t, match(horchata))

	match = Compile([]schema.Filter{{r.Name: "Fajitas", r.Author: "someone"}}, Exact)
	assert.False(t, match(fajitas))

	match = Compile([]schema.Filter{{r.Name: "JI"}}, Substring)
	assert.True(t, match(fajitas))
	assert.False(t, match(horchata))

	match = Compile([]schema.Filter{{r.Name: "ji"}}, Exact)
	assert.False(t, match(fajitas))

	zola := schema.Record{r.ID: "z1", r.Name: "Ratatouille", r.Author: "Émile Zola"}
	match = Compile([]schema.Filter{{r.Author: "ÉMILE"}}, Substring)
	assert.True(t, match(zola))
	assert.False(t, match(fajitas))

	pred, err := SQL([]schema.Filter{{r.Author: "ÉMILE"}}, Substring)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"recipes__author_0": "%émile%"}, pred.Params)

	assert.True(t, Compile(nil, Exact)(horchata))
}

func TestCompileCoercesFilterValues(t *testing.T) {
	i := schema.Ingredients
	row := schema.Record{i.ID: "q", i.Dairy: true}
	assert.True(t, Compile([]schema.Filter{{i.Dairy: 1}}, Exact)(row))
	assert.False(t, Compile([]schema.Filter{{i.Dairy: false}}, Exact)(row))
}

func TestProjection(t *testing.T) {
	j := schema.MustJoin(schema.Tags.Model, schema.Labels.Model, schema.Tags.LabelID, schema.Labels.ID)

	all, err := Projection(j, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	cols, err := Projection(j, []*schema.Field{schema.Labels.Name, schema.Labels.ID, schema.Labels.Name})
	require.NoError(t, err)
	assert.Equal(t, []*schema.Field{schema.Labels.Name, schema.Labels.ID}, cols)

	_, err = Projection(j, []*schema.Field{schema.Recipes.Name})
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestValidateAndCheckRecord(t *testing.T) {
	err := Validate(schema.Recipes, []schema.Filter{{schema.Labels.Name: "x"}})
	assert.ErrorIs(t, err, ErrUnknownField)

	require.NoError(t, Validate(schema.Recipes, []schema.Filter{{schema.Recipes.Name: "x"}}))

	err = CheckRecord(schema.Tags.Model, schema.Record{schema.Requirements.RecipeID: "x"})
	assert.ErrorIs(t, err, ErrUnknownField)
}
