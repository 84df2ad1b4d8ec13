package mock

import (
	"context"
	"io"
	"testing"

	"knife/internal/driver"
	"knife/internal/driver/document"
	"knife/internal/store"
)

func TestNewSeedsExpectedRecords(t *testing.T) {
	t.Parallel()

	for _, backend := range []Backend{SQLite, Document} {
		backend := backend
		t.Run(string(backend), func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			s, err := NewBackend(ctx, backend)
			if err != nil {
				t.Fatalf("mock database initialization failed: %v", err)
			}

			recipes, err := s.LookupRecipes(ctx, store.Params{})
			if err != nil {
				t.Fatalf("lookup recipes: %v", err)
			}
			if len(recipes) != 5 {
				t.Fatalf("expected 5 seeded recipes, got %d", len(recipes))
			}

			found, err := s.LookupRecipes(ctx, store.Params{"name": "fajitas"})
			if err != nil || len(found) != 1 {
				t.Fatalf("lookup fajitas: %v (%d rows)", err, len(found))
			}
			detail, err := s.GetRecipe(ctx, found[0].ID)
			if err != nil {
				t.Fatalf("get fajitas: %v", err)
			}
			if len(detail.Requirements) != 3 || len(detail.Dependencies) != 2 || len(detail.Tags) != 1 {
				t.Fatalf("unexpected fajitas detail: %+v", detail)
			}
			if !detail.Classification.Meat || !detail.Classification.Gluten || detail.Classification.Dairy {
				t.Fatalf("unexpected classification: %+v", detail.Classification)
			}

			labels, err := s.LookupLabels(ctx, store.Params{})
			if err != nil {
				t.Fatalf("lookup labels: %v", err)
			}
			if len(labels) != 4 {
				t.Fatalf("expected 4 labels, got %d", len(labels))
			}
		})
	}
}

func TestNewBackendRejectsUnknownEngine(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(context.Background(), "mysql"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestSeedRejectsDanglingReferences(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := NewBackend(ctx, Document)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	f := Fixture{Recipes: []RecipeFixture{{
		Name:         "Tamales",
		Dependencies: []DependencyFixture{{Recipe: "Masa"}},
	}}}

	if err := Seed(ctx, s, f); err == nil {
		t.Fatal("expected error for unknown dependency")
	}
}

type closeCounter struct {
	driver.Driver
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return c.Driver.(io.Closer).Close()
}

func TestSeedOrCloseReleasesDriverOnFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	open := func() *closeCounter {
		d, err := document.OpenConfig(document.Config{InMemory: true})
		if err != nil {
			t.Fatalf("open document driver: %v", err)
		}
		return &closeCounter{Driver: d}
	}

	bad := open()
	f := Fixture{Recipes: []RecipeFixture{{
		Name:         "Tamales",
		Requirements: []RequirementFixture{{Ingredient: "Masa"}},
	}}}
	if _, err := seedOrClose(ctx, bad, f); err == nil {
		t.Fatal("expected error for unknown ingredient")
	}
	if bad.closed != 1 {
		t.Fatalf("expected driver closed once, got %d", bad.closed)
	}

	good := open()
	t.Cleanup(func() { _ = good.Close() })
	s, err := seedOrClose(ctx, good, Fixture{Labels: []string{"Dinner"}})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if s == nil || good.closed != 0 {
		t.Fatalf("expected an open seeded store, closed=%d", good.closed)
	}
}
