// Package drivertest holds the behavioural checks every driver.Driver must
// pass. Backend packages run them against their own implementation.
package drivertest

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knife/internal/driver"
	"knife/internal/filter"
	"knife/internal/schema"
)

// Opener returns a fresh, empty driver for one subtest.
type Opener func(t *testing.T) driver.Driver

var (
	r   = schema.Recipes
	ing = schema.Ingredients
	dep = schema.Dependencies
	req = schema.Requirements
)

// Run exercises the driver contract.
func Run(t *testing.T, open Opener) {
	t.Run("RoundTripFillsDefaults", func(t *testing.T) { testRoundTrip(t, open(t)) })
	t.Run("BooleansRoundTrip", func(t *testing.T) { testBooleans(t, open(t)) })
	t.Run("FilterGroupsAreOrOfAnd", func(t *testing.T) { testOrOfAnd(t, open(t)) })
	t.Run("SubstringVersusExact", func(t *testing.T) { testSubstring(t, open(t)) })
	t.Run("Projection", func(t *testing.T) { testProjection(t, open(t)) })
	t.Run("UpdateTouchesMatchingRowsOnly", func(t *testing.T) { testUpdate(t, open(t)) })
	t.Run("EraseRequiresFilter", func(t *testing.T) { testErase(t, open(t)) })
	t.Run("JoinKeepsColumnsApart", func(t *testing.T) { testJoin(t, open(t)) })
	t.Run("UnknownFieldsAreRejected", func(t *testing.T) { testUnknownFields(t, open(t)) })
}

// Seed writes a small recipe graph: Fajitas requires Guacamole, which
// requires Pico de Gallo, plus the unrelated Horchata.
func Seed(t *testing.T, d driver.Driver) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range []schema.Record{
		{r.ID: "fajitas", r.Name: "Fajitas", r.SimpleName: "fajitas", r.Author: "jb"},
		{r.ID: "guacamole", r.Name: "Guacamole", r.SimpleName: "guacamole", r.Author: "jb"},
		{r.ID: "pico", r.Name: "Pico de Gallo", r.SimpleName: "pico_de_gallo"},
		{r.ID: "horchata", r.Name: "Horchata", r.SimpleName: "horchata"},
	} {
		require.NoError(t, d.Write(ctx, r.Model, rec))
	}
	for _, rec := range []schema.Record{
		{dep.RequiredBy: "fajitas", dep.Requisite: "guacamole", dep.Quantity: "1 cup"},
		{dep.RequiredBy: "guacamole", dep.Requisite: "pico"},
	} {
		require.NoError(t, d.Write(ctx, dep.Model, rec))
	}
}

// Values returns the sorted values of f across records.
func Values(records []schema.Record, f *schema.Field) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.String(f))
	}
	sort.Strings(out)
	return out
}

func testRoundTrip(t *testing.T, d driver.Driver) {
	ctx := context.Background()
	require.NoError(t, d.Write(ctx, r.Model, schema.Record{r.ID: "x1", r.Name: "Horchata"}))

	got, err := d.Read(ctx, r, driver.Where(schema.Filter{r.ID: "x1"}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, schema.Record{
		r.ID:          "x1",
		r.Name:        "Horchata",
		r.SimpleName:  nil,
		r.Author:      "",
		r.Directions:  "",
		r.Information: "",
	}, got[0])

	none, err := d.Read(ctx, r, driver.Where(schema.Filter{r.ID: "missing"}))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testBooleans(t *testing.T, d driver.Driver) {
	ctx := context.Background()
	require.NoError(t, d.Write(ctx, ing.Model, schema.Record{ing.ID: "cheese", ing.Name: "Cheese", ing.Dairy: true, ing.AnimalProduct: true}))
	require.NoError(t, d.Write(ctx, ing.Model, schema.Record{ing.ID: "onion", ing.Name: "Onion"}))

	dairy, err := d.Read(ctx, ing, driver.Where(schema.Filter{ing.Dairy: true}))
	require.NoError(t, err)
	require.Len(t, dairy, 1)
	assert.Equal(t, "cheese", dairy[0].String(ing.ID))
	assert.Equal(t, true, dairy[0][ing.AnimalProduct])
	assert.Equal(t, false, dairy[0][ing.Meat])

	plain, err := d.Read(ctx, ing, driver.Where(schema.Filter{ing.Dairy: false}))
	require.NoError(t, err)
	assert.Equal(t, []string{"onion"}, Values(plain, ing.ID))
}

func testOrOfAnd(t *testing.T, d driver.Driver) {
	Seed(t, d)
	ctx := context.Background()

	got, err := d.Read(ctx, r, driver.Where(
		schema.Filter{r.Author: "jb", r.Name: "Guacamole"},
		schema.Filter{r.ID: "horchata"},
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"guacamole", "horchata"}, Values(got, r.ID))

	got, err = d.Read(ctx, r, driver.Where(schema.Filter{r.Author: "jb", r.Name: "Horchata"}))
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := d.Read(ctx, r, driver.Where(schema.Filter{}))
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func testSubstring(t *testing.T, d driver.Driver) {
	Seed(t, d)
	ctx := context.Background()

	got, err := d.Read(ctx, r, driver.Query{Filters: []schema.Filter{{r.SimpleName: "ji"}}, Mode: filter.Substring})
	require.NoError(t, err)
	assert.Equal(t, []string{"fajitas"}, Values(got, r.ID))

	got, err = d.Read(ctx, r, driver.Where(schema.Filter{r.SimpleName: "ji"}))
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, d.Write(ctx, r.Model, schema.Record{r.ID: "pct", r.Name: "100% Juice", r.SimpleName: "100%_juice"}))
	got, err = d.Read(ctx, r, driver.Query{Filters: []schema.Filter{{r.SimpleName: "%"}}, Mode: filter.Substring})
	require.NoError(t, err)
	assert.Equal(t, []string{"pct"}, Values(got, r.ID))

	require.NoError(t, d.Write(ctx, r.Model, schema.Record{r.ID: "zola", r.Name: "Ratatouille", r.SimpleName: "ratatouille", r.Author: "Émile Zola"}))
	for _, needle := range []string{"émile", "ÉMILE", "Émile"} {
		got, err = d.Read(ctx, r, driver.Query{Filters: []schema.Filter{{r.Author: needle}}, Mode: filter.Substring})
		require.NoError(t, err)
		assert.Equal(t, []string{"zola"}, Values(got, r.ID), needle)
	}
}

func testProjection(t *testing.T, d driver.Driver) {
	Seed(t, d)
	got, err := d.Read(context.Background(), r, driver.Query{
		Filters: []schema.Filter{{r.ID: "pico"}},
		Columns: []*schema.Field{r.Name},
	})
	require.NoError(t, err)
	assert.Equal(t, []schema.Record{{r.Name: "Pico de Gallo"}}, got)
}

func testUpdate(t *testing.T, d driver.Driver) {
	Seed(t, d)
	ctx := context.Background()

	require.NoError(t, d.Write(ctx, r.Model, schema.Record{r.Author: "someone"}, schema.Filter{r.Author: "jb"}))
	got, err := d.Read(ctx, r, driver.Where(schema.Filter{r.Author: "someone"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"fajitas", "guacamole"}, Values(got, r.ID))

	untouched, err := d.Read(ctx, r, driver.Where(schema.Filter{r.ID: "horchata"}))
	require.NoError(t, err)
	require.Len(t, untouched, 1)
	assert.Equal(t, "", untouched[0].String(r.Author))

	require.NoError(t, d.Write(ctx, dep.Model, schema.Record{dep.Requisite: "horchata"},
		schema.Filter{dep.RequiredBy: "guacamole", dep.Requisite: "pico"}))
	edges, err := d.Read(ctx, dep, driver.Where(schema.Filter{dep.RequiredBy: "guacamole"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"horchata"}, Values(edges, dep.Requisite))

	require.NoError(t, d.Write(ctx, r.Model, schema.Record{r.Name: "Nothing"}, schema.Filter{r.ID: "missing"}))

	err = d.Write(ctx, r.Model, schema.Record{r.Name: "All"}, schema.Filter{})
	assert.ErrorIs(t, err, filter.ErrEmptyFilter)
}

func testErase(t *testing.T, d driver.Driver) {
	Seed(t, d)
	ctx := context.Background()

	assert.ErrorIs(t, d.Erase(ctx, r.Model), filter.ErrEmptyFilter)
	assert.ErrorIs(t, d.Erase(ctx, r.Model, schema.Filter{}), filter.ErrEmptyFilter)

	require.NoError(t, d.Erase(ctx, r.Model, schema.Filter{r.ID: "horchata"}, schema.Filter{r.ID: "pico"}))
	left, err := d.Read(ctx, r, driver.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"fajitas", "guacamole"}, Values(left, r.ID))

	require.NoError(t, d.Erase(ctx, r.Model, schema.Filter{r.ID: "missing"}))
}

func testJoin(t *testing.T, d driver.Driver) {
	Seed(t, d)
	join := schema.MustJoin(dep.Model, r.Model, dep.Requisite, r.ID)

	got, err := d.Read(context.Background(), join, driver.Where(schema.Filter{dep.RequiredBy: "fajitas"}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "guacamole", got[0].String(r.ID))
	assert.Equal(t, "Guacamole", got[0].String(r.Name))
	assert.Equal(t, "1 cup", got[0].String(dep.Quantity))
	assert.Equal(t, "fajitas", got[0].String(dep.RequiredBy))

	byRight, err := d.Read(context.Background(), join, driver.Where(schema.Filter{r.Name: "Pico de Gallo"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"guacamole"}, Values(byRight, dep.RequiredBy))

	all, err := d.Read(context.Background(), join, driver.Query{Columns: []*schema.Field{dep.RequiredBy, r.Name}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Guacamole", "Pico de Gallo"}, Values(all, r.Name))
	assert.Len(t, all[0], 2)
}

func testUnknownFields(t *testing.T, d driver.Driver) {
	ctx := context.Background()

	_, err := d.Read(ctx, r, driver.Where(schema.Filter{req.Quantity: "1"}))
	assert.ErrorIs(t, err, filter.ErrUnknownField)

	_, err = d.Read(ctx, r, driver.Query{Columns: []*schema.Field{ing.Name}})
	assert.ErrorIs(t, err, filter.ErrUnknownField)

	err = d.Write(ctx, r.Model, schema.Record{r.ID: "x", r.Name: "X", ing.Dairy: true})
	assert.ErrorIs(t, err, filter.ErrUnknownField)

	err = d.Erase(ctx, r.Model, schema.Filter{ing.ID: "x"})
	assert.ErrorIs(t, err, filter.ErrUnknownField)
}
