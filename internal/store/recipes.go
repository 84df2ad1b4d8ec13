package store

import (
	"context"
	"sort"

	"knife/internal/driver"
	"knife/internal/filter"
	"knife/internal/graph"
	applog "knife/internal/log"
	"knife/internal/schema"
	"knife/models"
)

const recipeEntity = "recipe"

var recipeFields = []*schema.Field{recipes.Name, recipes.Author, recipes.Directions, recipes.Information}

// CreateRecipe stores a new recipe. name is mandatory and its simple_name
// must not be taken.
func (s *Store) CreateRecipe(ctx context.Context, p Params) (models.Recipe, error) {
	if len(p) == 0 {
		return models.Recipe{}, invalidQuery(recipeEntity, "")
	}
	rec, err := s.decode(recipes.Model, p, recipeFields...)
	if err != nil {
		return models.Recipe{}, err
	}
	name, ok := rec[recipes.Name].(string)
	if !ok {
		return models.Recipe{}, invalidQuery(recipeEntity, recipes.Name.Name)
	}

	unlock := s.lock(recipes.Model)
	defer unlock()

	simple := schema.Simplify(name)
	existing, err := s.first(ctx, recipes, schema.Filter{recipes.SimpleName: simple})
	if err != nil {
		return models.Recipe{}, translate(recipeEntity, err)
	}
	if existing != nil {
		return models.Recipe{}, alreadyExists(recipeEntity, models.RecipeFromRecord(existing))
	}

	rec[recipes.ID] = schema.NewID(name)
	rec[recipes.SimpleName] = simple
	if err := s.driver.Write(ctx, recipes.Model, rec); err != nil {
		return models.Recipe{}, translate(recipeEntity, err)
	}

	recipe := models.RecipeFromRecord(rec)
	applog.Info(ctx, "recipe created", "id", recipe.ID, "name", recipe.Name)
	return recipe, nil
}

// LookupRecipes lists recipes whose fields contain the given values. name is
// compared on simple_name, id must match exactly.
func (s *Store) LookupRecipes(ctx context.Context, p Params) ([]models.Recipe, error) {
	rec, err := s.decodeLookup(recipes.Model, p, append([]*schema.Field{recipes.ID}, recipeFields...)...)
	if err != nil {
		return nil, err
	}
	where, id := lookupFilter(rec, recipes.ID, recipes.Name, recipes.SimpleName)
	if id != "" {
		where[recipes.ID] = id
	}

	rows, err := s.driver.Read(ctx, recipes, driver.Query{Filters: []schema.Filter{where}, Mode: filter.Substring})
	if err != nil {
		return nil, translate(recipeEntity, err)
	}

	out := make([]models.Recipe, 0, len(rows))
	for _, row := range rows {
		r := models.RecipeFromRecord(row)
		if id != "" && r.ID != id {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SimpleName < out[j].SimpleName })
	return out, nil
}

func (s *Store) recipe(ctx context.Context, id string) (models.Recipe, error) {
	row, err := s.first(ctx, recipes, schema.Filter{recipes.ID: id})
	if err != nil {
		return models.Recipe{}, translate(recipeEntity, err)
	}
	if row == nil {
		return models.Recipe{}, notFound(recipeEntity, id)
	}
	return models.RecipeFromRecord(row), nil
}

// GetRecipe returns a recipe with its requirements, dependencies, the
// recipes depending on it, its tags and the classification of its whole
// dependency graph.
func (s *Store) GetRecipe(ctx context.Context, id string) (models.RecipeDetail, error) {
	recipe, err := s.recipe(ctx, id)
	if err != nil {
		return models.RecipeDetail{}, err
	}

	detail := models.RecipeDetail{Recipe: recipe}
	if detail.Requirements, err = graph.RequirementList(ctx, s.driver, id); err != nil {
		return models.RecipeDetail{}, translate(recipeEntity, err)
	}
	if detail.Dependencies, err = graph.DependencyList(ctx, s.driver, id); err != nil {
		return models.RecipeDetail{}, translate(recipeEntity, err)
	}
	if detail.RequiredBy, err = graph.Dependents(ctx, s.driver, id); err != nil {
		return models.RecipeDetail{}, translate(recipeEntity, err)
	}
	if detail.Tags, err = graph.TagList(ctx, s.driver, id); err != nil {
		return models.RecipeDetail{}, translate(recipeEntity, err)
	}
	if detail.Classification, err = graph.ClassifyGraph(ctx, s.driver, id); err != nil {
		return models.RecipeDetail{}, translate(recipeEntity, err)
	}
	return detail, nil
}

// EditRecipe updates the given fields. A rename re-derives simple_name and
// re-checks uniqueness; the id never changes.
func (s *Store) EditRecipe(ctx context.Context, id string, p Params) (models.Recipe, error) {
	if len(p) == 0 {
		return models.Recipe{}, invalidQuery(recipeEntity, "")
	}
	rec, err := s.decode(recipes.Model, p, recipeFields...)
	if err != nil {
		return models.Recipe{}, err
	}

	unlock := s.lock(recipes.Model)
	defer unlock()

	if _, err := s.recipe(ctx, id); err != nil {
		return models.Recipe{}, err
	}
	if name, ok := rec[recipes.Name].(string); ok {
		simple := schema.Simplify(name)
		clash, err := s.first(ctx, recipes, schema.Filter{recipes.SimpleName: simple})
		if err != nil {
			return models.Recipe{}, translate(recipeEntity, err)
		}
		if clash != nil && clash.String(recipes.ID) != id {
			return models.Recipe{}, alreadyExists(recipeEntity, models.RecipeFromRecord(clash))
		}
		rec[recipes.SimpleName] = simple
	}

	if err := s.driver.Write(ctx, recipes.Model, rec, schema.Filter{recipes.ID: id}); err != nil {
		return models.Recipe{}, translate(recipeEntity, err)
	}
	return s.recipe(ctx, id)
}

// DeleteRecipe removes a recipe after every requirement, tag and dependency
// edge touching it.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	unlock := s.lock(recipes.Model, requirements.Model, tags.Model, dependencies.Model)
	defer unlock()

	if _, err := s.recipe(ctx, id); err != nil {
		return err
	}

	steps := []struct {
		model   *schema.Model
		filters []schema.Filter
	}{
		{requirements.Model, []schema.Filter{{requirements.RecipeID: id}}},
		{tags.Model, []schema.Filter{{tags.RecipeID: id}}},
		{dependencies.Model, []schema.Filter{{dependencies.RequiredBy: id}, {dependencies.Requisite: id}}},
		{recipes.Model, []schema.Filter{{recipes.ID: id}}},
	}
	for _, step := range steps {
		if err := s.driver.Erase(ctx, step.model, step.filters...); err != nil {
			return translate(recipeEntity, err)
		}
	}

	applog.Info(ctx, "recipe deleted", "id", id)
	return nil
}

// RecipeRequirements lists the ingredients a recipe requires.
func (s *Store) RecipeRequirements(ctx context.Context, id string) ([]models.RequirementEntry, error) {
	if _, err := s.recipe(ctx, id); err != nil {
		return nil, err
	}
	out, err := graph.RequirementList(ctx, s.driver, id)
	return out, translate(recipeEntity, err)
}

// RecipeDependencies lists the recipes a recipe directly requires.
func (s *Store) RecipeDependencies(ctx context.Context, id string) ([]models.DependencyEntry, error) {
	if _, err := s.recipe(ctx, id); err != nil {
		return nil, err
	}
	out, err := graph.DependencyList(ctx, s.driver, id)
	return out, translate(recipeEntity, err)
}

// RecipeTags lists the labels attached to a recipe.
func (s *Store) RecipeTags(ctx context.Context, id string) ([]models.LabelSummary, error) {
	if _, err := s.recipe(ctx, id); err != nil {
		return nil, err
	}
	out, err := graph.TagList(ctx, s.driver, id)
	return out, translate(recipeEntity, err)
}

// RecipeClassification folds the dietary flags over the recipe and every
// recipe it transitively depends on.
func (s *Store) RecipeClassification(ctx context.Context, id string) (models.Classification, error) {
	if _, err := s.recipe(ctx, id); err != nil {
		return models.Classification{}, err
	}
	out, err := graph.ClassifyGraph(ctx, s.driver, id)
	return out, translate(recipeEntity, err)
}
