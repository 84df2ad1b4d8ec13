package graph

import (
	"context"

	"knife/internal/driver"
	"knife/internal/schema"
	"knife/models"
)

// Classify folds the dietary flags of the ingredients a recipe requires.
// Optional requirements count.
func Classify(ctx context.Context, d driver.Driver, recipeID string) (models.Classification, error) {
	return classify(ctx, d, []string{recipeID})
}

// ClassifyGraph is Classify over the recipe and everything it depends on.
func ClassifyGraph(ctx context.Context, d driver.Driver, recipeID string) (models.Classification, error) {
	nodes, err := DependencyNodes(ctx, d, recipeID)
	if err != nil {
		return models.Classification{}, err
	}
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	return classify(ctx, d, ids)
}

func classify(ctx context.Context, d driver.Driver, recipeIDs []string) (models.Classification, error) {
	var c models.Classification
	if len(recipeIDs) == 0 {
		return c, nil
	}

	groups := make([]schema.Filter, 0, len(recipeIDs))
	for _, id := range recipeIDs {
		groups = append(groups, schema.Filter{requirements.RecipeID: id})
	}
	join := schema.MustJoin(requirements.Model, ingredients.Model, requirements.IngredientID, ingredients.ID)
	rows, err := d.Read(ctx, join, driver.Query{
		Filters: groups,
		Columns: []*schema.Field{ingredients.Dairy, ingredients.Meat, ingredients.Gluten, ingredients.AnimalProduct},
	})
	if err != nil {
		return c, err
	}
	for _, row := range rows {
		c = c.Add(models.IngredientFromRecord(row))
	}
	return c, nil
}
