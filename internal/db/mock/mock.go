// Package mock builds an in-memory Store seeded with a small Mexican
// cookbook, for local runs and tests.
package mock

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"knife/internal/driver"
	"knife/internal/driver/document"
	"knife/internal/driver/relational"
	applog "knife/internal/log"
	"knife/internal/store"
)

//go:embed seed.yaml
var seedYAML []byte

// Fixture is the shape of the seed file.
type Fixture struct {
	Ingredients []IngredientFixture `yaml:"ingredients"`
	Labels      []string            `yaml:"labels"`
	Recipes     []RecipeFixture     `yaml:"recipes"`
}

type IngredientFixture struct {
	Name          string `yaml:"name"`
	Dairy         bool   `yaml:"dairy"`
	Meat          bool   `yaml:"meat"`
	Gluten        bool   `yaml:"gluten"`
	AnimalProduct bool   `yaml:"animal_product"`
}

type RecipeFixture struct {
	Name         string               `yaml:"name"`
	Author       string               `yaml:"author"`
	Directions   string               `yaml:"directions"`
	Information  string               `yaml:"information"`
	Requirements []RequirementFixture `yaml:"requirements"`
	Dependencies []DependencyFixture  `yaml:"dependencies"`
	Tags         []string             `yaml:"tags"`
}

type RequirementFixture struct {
	Ingredient string `yaml:"ingredient"`
	Quantity   string `yaml:"quantity"`
	Optional   bool   `yaml:"optional"`
	Group      string `yaml:"group"`
}

type DependencyFixture struct {
	Recipe   string `yaml:"recipe"`
	Quantity string `yaml:"quantity"`
	Optional bool   `yaml:"optional"`
}

// Backend selects the in-memory engine behind the mock store.
type Backend string

const (
	SQLite   Backend = "sqlite"
	Document Backend = "document"
)

var databases atomic.Int64

// New returns a store over a fresh in-memory SQLite database seeded with the
// default fixture.
func New(ctx context.Context) (*store.Store, error) {
	return NewBackend(ctx, SQLite)
}

// NewBackend is New on the chosen engine.
func NewBackend(ctx context.Context, b Backend) (*store.Store, error) {
	applog.Debug(ctx, "initialising mock database", "backend", string(b))

	fixture, err := DefaultFixture()
	if err != nil {
		return nil, err
	}

	var d driver.Driver
	switch b {
	case SQLite:
		d, err = relational.OpenSQLite(ctx, fmt.Sprintf("file:knife-mock-%d?mode=memory&cache=shared", databases.Add(1)))
	case Document:
		d, err = document.OpenConfig(document.Config{InMemory: true})
	default:
		return nil, fmt.Errorf("unknown mock backend %q", b)
	}
	if err != nil {
		return nil, err
	}

	s, err := seedOrClose(ctx, d, fixture)
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return s, nil
}

// seedOrClose seeds a store over d, closing d when seeding fails.
func seedOrClose(ctx context.Context, d driver.Driver, f Fixture) (*store.Store, error) {
	s := store.New(d)
	if err := Seed(ctx, s, f); err != nil {
		if c, ok := d.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil {
				applog.Warn(ctx, "failed to close mock database", "error", cerr)
			}
		}
		return nil, err
	}
	return s, nil
}

// DefaultFixture decodes the embedded seed file.
func DefaultFixture() (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode seed fixture: %w", err)
	}
	return f, nil
}

// Seed writes f through s. Recipes are created before any edge so
// dependencies may name recipes declared later in the file.
func Seed(ctx context.Context, s *store.Store, f Fixture) error {
	applog.Debug(ctx, "seeding mock database")

	ingredientIDs := make(map[string]string, len(f.Ingredients))
	for _, i := range f.Ingredients {
		created, err := s.CreateIngredient(ctx, store.Params{
			"name":           i.Name,
			"dairy":          i.Dairy,
			"meat":           i.Meat,
			"gluten":         i.Gluten,
			"animal_product": i.AnimalProduct,
		})
		if err != nil {
			return fmt.Errorf("seed ingredient %s: %w", i.Name, err)
		}
		ingredientIDs[i.Name] = created.ID
	}

	for _, name := range f.Labels {
		if _, err := s.CreateLabel(ctx, store.Params{"name": name}); err != nil {
			return fmt.Errorf("seed label %s: %w", name, err)
		}
	}

	recipeIDs := make(map[string]string, len(f.Recipes))
	for _, r := range f.Recipes {
		p := store.Params{"name": r.Name}
		for key, value := range map[string]string{"author": r.Author, "directions": r.Directions, "information": r.Information} {
			if value != "" {
				p[key] = value
			}
		}
		created, err := s.CreateRecipe(ctx, p)
		if err != nil {
			return fmt.Errorf("seed recipe %s: %w", r.Name, err)
		}
		recipeIDs[r.Name] = created.ID
	}

	for _, r := range f.Recipes {
		id := recipeIDs[r.Name]
		for _, req := range r.Requirements {
			ingredientID, ok := ingredientIDs[req.Ingredient]
			if !ok {
				return fmt.Errorf("seed recipe %s: unknown ingredient %s", r.Name, req.Ingredient)
			}
			_, err := s.AddRequirement(ctx, id, store.Params{
				"ingredient_id": ingredientID,
				"quantity":      req.Quantity,
				"optional":      req.Optional,
				"group":         req.Group,
			})
			if err != nil {
				return fmt.Errorf("seed requirement %s/%s: %w", r.Name, req.Ingredient, err)
			}
		}
		for _, dep := range r.Dependencies {
			requisite, ok := recipeIDs[dep.Recipe]
			if !ok {
				return fmt.Errorf("seed recipe %s: unknown dependency %s", r.Name, dep.Recipe)
			}
			_, err := s.AddDependency(ctx, id, store.Params{
				"requisite": requisite,
				"quantity":  dep.Quantity,
				"optional":  dep.Optional,
			})
			if err != nil {
				return fmt.Errorf("seed dependency %s -> %s: %w", r.Name, dep.Recipe, err)
			}
		}
		for _, tag := range r.Tags {
			if _, err := s.AddTag(ctx, id, store.Params{"name": tag}); err != nil {
				return fmt.Errorf("seed tag %s/%s: %w", r.Name, tag, err)
			}
		}
	}
	return nil
}
