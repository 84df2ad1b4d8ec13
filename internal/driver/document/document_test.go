package document

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knife/internal/driver"
	"knife/internal/driver/drivertest"
	"knife/internal/driver/relational"
	"knife/internal/schema"
)

func openMemory(t *testing.T) driver.Driver {
	t.Helper()
	db, err := OpenConfig(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDocumentConformance(t *testing.T) {
	drivertest.Run(t, openMemory)
}

func TestAliasesOpenInMemory(t *testing.T) {
	for _, kind := range []string{"document", "json", "badger"} {
		d, err := driver.Open(context.Background(), kind, ":memory:")
		require.NoError(t, err, kind)
		require.NoError(t, d.(*DB).Close())
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	r := schema.Recipes

	db, err := Open(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, r.Model, schema.Record{r.ID: "h", r.Name: "Horchata"}))
	require.NoError(t, db.Close())

	db, err = Open(ctx, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	got, err := db.Read(ctx, r, driver.Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Horchata", got[0].String(r.Name))
}

func TestReadFollowsInsertionOrder(t *testing.T) {
	d := openMemory(t)
	ctx := context.Background()
	l := schema.Labels

	names := []string{"vegan", "mexican", "drink", "spicy"}
	for i, name := range names {
		require.NoError(t, d.Write(ctx, l.Model, schema.Record{l.ID: fmt.Sprint(i), l.Name: name}))
	}

	got, err := d.Read(ctx, l, driver.Query{Columns: []*schema.Field{l.Name}})
	require.NoError(t, err)
	order := make([]string, 0, len(got))
	for _, rec := range got {
		order = append(order, rec.String(l.Name))
	}
	assert.Equal(t, names, order)
}

func TestUnknownCollectionsStayApart(t *testing.T) {
	d := openMemory(t)
	ctx := context.Background()

	require.NoError(t, d.Write(ctx, schema.Labels.Model, schema.Record{schema.Labels.ID: "l", schema.Labels.Name: "vegan"}))
	got, err := d.Read(ctx, schema.Tags, driver.Query{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

// Both backends must return the same rows for the same join and predicate.
func TestJoinMatchesRelationalBackend(t *testing.T) {
	ctx := context.Background()
	doc := openMemory(t)
	sql, err := relational.OpenSQLite(ctx, "file:document_join_equivalence?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sql.Close() })

	for _, d := range []driver.Driver{doc, sql} {
		drivertest.Seed(t, d)
		t2 := schema.Tags
		for _, rec := range []schema.Record{
			{schema.Labels.ID: "mexican", schema.Labels.Name: "mexican"},
			{schema.Labels.ID: "drink", schema.Labels.Name: "drink"},
		} {
			require.NoError(t, d.Write(ctx, schema.Labels.Model, rec))
		}
		for _, rec := range []schema.Record{
			{t2.RecipeID: "fajitas", t2.LabelID: "mexican"},
			{t2.RecipeID: "horchata", t2.LabelID: "mexican"},
			{t2.RecipeID: "horchata", t2.LabelID: "drink"},
			{t2.RecipeID: "horchata", t2.LabelID: "orphan"},
		} {
			require.NoError(t, d.Write(ctx, t2.Model, rec))
		}
	}

	cases := []struct {
		name  string
		join  schema.Join
		query driver.Query
	}{
		{
			name:  "tags by recipe",
			join:  schema.MustJoin(schema.Tags.Model, schema.Labels.Model, schema.Tags.LabelID, schema.Labels.ID),
			query: driver.Where(schema.Filter{schema.Tags.RecipeID: "horchata"}),
		},
		{
			name:  "recipes by label",
			join:  schema.MustJoin(schema.Tags.Model, schema.Recipes.Model, schema.Tags.RecipeID, schema.Recipes.ID),
			query: driver.Where(schema.Filter{schema.Tags.LabelID: "mexican"}),
		},
		{
			name: "dependencies either side",
			join: schema.MustJoin(schema.Dependencies.Model, schema.Recipes.Model, schema.Dependencies.Requisite, schema.Recipes.ID),
			query: driver.Where(
				schema.Filter{schema.Dependencies.RequiredBy: "guacamole"},
				schema.Filter{schema.Recipes.Author: "jb"},
			),
		},
		{
			name: "everything",
			join: schema.MustJoin(schema.Dependencies.Model, schema.Recipes.Model, schema.Dependencies.RequiredBy, schema.Recipes.ID),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fromDoc, err := doc.Read(ctx, tc.join, tc.query)
			require.NoError(t, err)
			fromSQL, err := sql.Read(ctx, tc.join, tc.query)
			require.NoError(t, err)
			assert.Equal(t, canonical(fromSQL), canonical(fromDoc))
		})
	}
}

func canonical(records []schema.Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for f, v := range rec {
			keys = append(keys, fmt.Sprintf("%s=%v", f.Qualified(), v))
		}
		sort.Strings(keys)
		row := strings.Join(keys, ";")
		out = append(out, row)
	}
	sort.Strings(out)
	return out
}
