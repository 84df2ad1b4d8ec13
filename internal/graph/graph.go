// Package graph answers the questions that span several tables: reachability
// over recipe dependencies and the join-backed listings shown with recipes,
// ingredients and labels. Everything goes through driver.Driver, so the same
// code serves every backend.
package graph

import (
	"context"
	"sort"

	"knife/internal/driver"
	"knife/internal/schema"
	"knife/models"
)

var (
	recipes      = schema.Recipes
	ingredients  = schema.Ingredients
	labels       = schema.Labels
	requirements = schema.Requirements
	tags         = schema.Tags
	dependencies = schema.Dependencies
)

// DependencyNodes returns the ids of every recipe reachable from recipeID by
// following requisite edges, recipeID included. Each tier is read with one
// query; the visited set guarantees termination even if a cycle slipped in.
func DependencyNodes(ctx context.Context, d driver.Driver, recipeID string) (map[string]struct{}, error) {
	visited := map[string]struct{}{}
	frontier := []string{recipeID}

	for len(frontier) > 0 {
		groups := make([]schema.Filter, 0, len(frontier))
		for _, id := range frontier {
			visited[id] = struct{}{}
			groups = append(groups, schema.Filter{dependencies.RequiredBy: id})
		}

		edges, err := d.Read(ctx, dependencies, driver.Query{
			Filters: groups,
			Columns: []*schema.Field{dependencies.Requisite},
		})
		if err != nil {
			return nil, err
		}

		queued := map[string]struct{}{}
		var next []string
		for _, edge := range edges {
			id := edge.String(dependencies.Requisite)
			if _, seen := visited[id]; seen {
				continue
			}
			if _, seen := queued[id]; seen {
				continue
			}
			queued[id] = struct{}{}
			next = append(next, id)
		}
		frontier = next
	}
	return visited, nil
}

// Reaches reports whether to is reachable from from, including from == to.
func Reaches(ctx context.Context, d driver.Driver, from, to string) (bool, error) {
	nodes, err := DependencyNodes(ctx, d, from)
	if err != nil {
		return false, err
	}
	_, ok := nodes[to]
	return ok, nil
}

// RequirementList lists the ingredients a recipe requires.
func RequirementList(ctx context.Context, d driver.Driver, recipeID string) ([]models.RequirementEntry, error) {
	join := schema.MustJoin(requirements.Model, ingredients.Model, requirements.IngredientID, ingredients.ID)
	rows, err := d.Read(ctx, join, driver.Query{
		Filters: []schema.Filter{{requirements.RecipeID: recipeID}},
		Columns: []*schema.Field{ingredients.ID, ingredients.Name, requirements.Quantity, requirements.Optional, requirements.Group},
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.RequirementEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.RequirementEntry{
			Ingredient: models.IngredientSummary{ID: row.String(ingredients.ID), Name: row.String(ingredients.Name)},
			Quantity:   row.String(requirements.Quantity),
			Optional:   row.Bool(requirements.Optional),
			Group:      row.String(requirements.Group),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Ingredient.Name, out[i].Ingredient.ID, out[j].Ingredient.Name, out[j].Ingredient.ID)
	})
	return out, nil
}

// DependencyList lists the recipes a recipe directly requires.
func DependencyList(ctx context.Context, d driver.Driver, recipeID string) ([]models.DependencyEntry, error) {
	join := schema.MustJoin(dependencies.Model, recipes.Model, dependencies.Requisite, recipes.ID)
	rows, err := d.Read(ctx, join, driver.Query{
		Filters: []schema.Filter{{dependencies.RequiredBy: recipeID}},
		Columns: []*schema.Field{recipes.ID, recipes.Name, dependencies.Quantity, dependencies.Optional},
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.DependencyEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.DependencyEntry{
			Recipe:   models.RecipeFromRecord(row).Summary(),
			Quantity: row.String(dependencies.Quantity),
			Optional: row.Bool(dependencies.Optional),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Recipe.Name, out[i].Recipe.ID, out[j].Recipe.Name, out[j].Recipe.ID)
	})
	return out, nil
}

// TagList lists the labels attached to a recipe.
func TagList(ctx context.Context, d driver.Driver, recipeID string) ([]models.LabelSummary, error) {
	join := schema.MustJoin(tags.Model, labels.Model, tags.LabelID, labels.ID)
	rows, err := d.Read(ctx, join, driver.Query{
		Filters: []schema.Filter{{tags.RecipeID: recipeID}},
		Columns: []*schema.Field{labels.ID, labels.Name},
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.LabelSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.LabelSummary{ID: row.String(labels.ID), Name: row.String(labels.Name)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Name, out[i].ID, out[j].Name, out[j].ID)
	})
	return out, nil
}

// TaggedRecipes lists the recipes carrying a label.
func TaggedRecipes(ctx context.Context, d driver.Driver, labelID string) ([]models.RecipeSummary, error) {
	join := schema.MustJoin(tags.Model, recipes.Model, tags.RecipeID, recipes.ID)
	return recipeSummaries(ctx, d, join, schema.Filter{tags.LabelID: labelID})
}

// UsedIn lists the recipes requiring an ingredient.
func UsedIn(ctx context.Context, d driver.Driver, ingredientID string) ([]models.RecipeSummary, error) {
	join := schema.MustJoin(requirements.Model, recipes.Model, requirements.RecipeID, recipes.ID)
	return recipeSummaries(ctx, d, join, schema.Filter{requirements.IngredientID: ingredientID})
}

// Dependents lists the recipes that directly require recipeID.
func Dependents(ctx context.Context, d driver.Driver, recipeID string) ([]models.RecipeSummary, error) {
	join := schema.MustJoin(dependencies.Model, recipes.Model, dependencies.RequiredBy, recipes.ID)
	return recipeSummaries(ctx, d, join, schema.Filter{dependencies.Requisite: recipeID})
}

func recipeSummaries(ctx context.Context, d driver.Driver, join schema.Join, where schema.Filter) ([]models.RecipeSummary, error) {
	rows, err := d.Read(ctx, join, driver.Query{
		Filters: []schema.Filter{where},
		Columns: []*schema.Field{recipes.ID, recipes.Name},
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.RecipeSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.RecipeFromRecord(row).Summary())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Name, out[i].ID, out[j].Name, out[j].ID)
	})
	return out, nil
}

func less(nameA, idA, nameB, idB string) bool {
	if nameA != nameB {
		return nameA < nameB
	}
	return idA < idB
}
