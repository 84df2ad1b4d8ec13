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

const ingredientEntity = "ingredient"

var ingredientFields = []*schema.Field{
	ingredients.Name,
	ingredients.Dairy,
	ingredients.Meat,
	ingredients.Gluten,
	ingredients.AnimalProduct,
}

// CreateIngredient stores a new ingredient. name is mandatory and its
// simple_name must not be taken.
func (s *Store) CreateIngredient(ctx context.Context, p Params) (models.Ingredient, error) {
	if len(p) == 0 {
		return models.Ingredient{}, invalidQuery(ingredientEntity, "")
	}
	rec, err := s.decode(ingredients.Model, p, ingredientFields...)
	if err != nil {
		return models.Ingredient{}, err
	}

	unlock := s.lock(ingredients.Model)
	defer unlock()

	return s.createIngredient(ctx, rec)
}

func (s *Store) createIngredient(ctx context.Context, rec schema.Record) (models.Ingredient, error) {
	name, ok := rec[ingredients.Name].(string)
	if !ok {
		return models.Ingredient{}, invalidQuery(ingredientEntity, ingredients.Name.Name)
	}

	simple := schema.Simplify(name)
	existing, err := s.first(ctx, ingredients, schema.Filter{ingredients.SimpleName: simple})
	if err != nil {
		return models.Ingredient{}, translate(ingredientEntity, err)
	}
	if existing != nil {
		return models.Ingredient{}, alreadyExists(ingredientEntity, models.IngredientFromRecord(existing))
	}

	rec[ingredients.ID] = schema.NewID(name)
	rec[ingredients.SimpleName] = simple
	if err := s.driver.Write(ctx, ingredients.Model, rec); err != nil {
		return models.Ingredient{}, translate(ingredientEntity, err)
	}

	ingredient, err := s.ingredient(ctx, rec.String(ingredients.ID))
	if err != nil {
		return models.Ingredient{}, err
	}
	applog.Info(ctx, "ingredient created", "id", ingredient.ID, "name", ingredient.Name)
	return ingredient, nil
}

// LookupIngredients lists ingredients matching the given values. name is
// matched as a substring of simple_name, flags and id exactly.
func (s *Store) LookupIngredients(ctx context.Context, p Params) ([]models.Ingredient, error) {
	rec, err := s.decodeLookup(ingredients.Model, p, append([]*schema.Field{ingredients.ID}, ingredientFields...)...)
	if err != nil {
		return nil, err
	}
	where, id := lookupFilter(rec, ingredients.ID, ingredients.Name, ingredients.SimpleName)
	if id != "" {
		where[ingredients.ID] = id
	}

	rows, err := s.driver.Read(ctx, ingredients, driver.Query{Filters: []schema.Filter{where}, Mode: filter.Substring})
	if err != nil {
		return nil, translate(ingredientEntity, err)
	}

	out := make([]models.Ingredient, 0, len(rows))
	for _, row := range rows {
		i := models.IngredientFromRecord(row)
		if id != "" && i.ID != id {
			continue
		}
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SimpleName < out[j].SimpleName })
	return out, nil
}

func (s *Store) ingredient(ctx context.Context, id string) (models.Ingredient, error) {
	row, err := s.first(ctx, ingredients, schema.Filter{ingredients.ID: id})
	if err != nil {
		return models.Ingredient{}, translate(ingredientEntity, err)
	}
	if row == nil {
		return models.Ingredient{}, notFound(ingredientEntity, id)
	}
	return models.IngredientFromRecord(row), nil
}

// ShowIngredient returns an ingredient and the recipes using it.
func (s *Store) ShowIngredient(ctx context.Context, id string) (models.IngredientDetail, error) {
	ingredient, err := s.ingredient(ctx, id)
	if err != nil {
		return models.IngredientDetail{}, err
	}
	used, err := graph.UsedIn(ctx, s.driver, id)
	if err != nil {
		return models.IngredientDetail{}, translate(ingredientEntity, err)
	}
	return models.IngredientDetail{Ingredient: ingredient, UsedIn: used}, nil
}

// EditIngredient updates the given fields, re-checking uniqueness on rename.
func (s *Store) EditIngredient(ctx context.Context, id string, p Params) (models.Ingredient, error) {
	if len(p) == 0 {
		return models.Ingredient{}, invalidQuery(ingredientEntity, "")
	}
	rec, err := s.decode(ingredients.Model, p, ingredientFields...)
	if err != nil {
		return models.Ingredient{}, err
	}

	unlock := s.lock(ingredients.Model)
	defer unlock()

	if _, err := s.ingredient(ctx, id); err != nil {
		return models.Ingredient{}, err
	}
	if name, ok := rec[ingredients.Name].(string); ok {
		simple := schema.Simplify(name)
		clash, err := s.first(ctx, ingredients, schema.Filter{ingredients.SimpleName: simple})
		if err != nil {
			return models.Ingredient{}, translate(ingredientEntity, err)
		}
		if clash != nil && clash.String(ingredients.ID) != id {
			return models.Ingredient{}, alreadyExists(ingredientEntity, models.IngredientFromRecord(clash))
		}
		rec[ingredients.SimpleName] = simple
	}

	if err := s.driver.Write(ctx, ingredients.Model, rec, schema.Filter{ingredients.ID: id}); err != nil {
		return models.Ingredient{}, translate(ingredientEntity, err)
	}
	return s.ingredient(ctx, id)
}

// DeleteIngredient removes an ingredient. While recipes still require it the
// call fails with InUse, unless cascade is set, in which case those
// requirements go first.
func (s *Store) DeleteIngredient(ctx context.Context, id string, cascade bool) error {
	unlock := s.lock(ingredients.Model, requirements.Model)
	defer unlock()

	return s.deleteIngredient(ctx, id, cascade)
}

func (s *Store) deleteIngredient(ctx context.Context, id string, cascade bool) error {
	if _, err := s.ingredient(ctx, id); err != nil {
		return err
	}

	uses, err := s.count(ctx, requirements.Model, schema.Filter{requirements.IngredientID: id})
	if err != nil {
		return translate(ingredientEntity, err)
	}
	if uses > 0 {
		if !cascade {
			return inUse(ingredientEntity, id, uses)
		}
		if err := s.driver.Erase(ctx, requirements.Model, schema.Filter{requirements.IngredientID: id}); err != nil {
			return translate(ingredientEntity, err)
		}
	}

	if err := s.driver.Erase(ctx, ingredients.Model, schema.Filter{ingredients.ID: id}); err != nil {
		return translate(ingredientEntity, err)
	}
	applog.Info(ctx, "ingredient deleted", "id", id, "requirements", uses)
	return nil
}

// MergeIngredient folds src into dest: every requirement on src is moved to
// dest, unless the recipe already requires dest, then src is deleted.
func (s *Store) MergeIngredient(ctx context.Context, destID, srcID string) (models.IngredientDetail, error) {
	if destID == srcID {
		return models.IngredientDetail{}, invalidValue(ingredientEntity, "id", srcID, nil)
	}

	unlock := s.lock(ingredients.Model, requirements.Model)
	defer unlock()

	if _, err := s.ingredient(ctx, destID); err != nil {
		return models.IngredientDetail{}, err
	}
	if _, err := s.ingredient(ctx, srcID); err != nil {
		return models.IngredientDetail{}, err
	}

	moved, err := s.driver.Read(ctx, requirements, driver.Where(schema.Filter{requirements.IngredientID: srcID}))
	if err != nil {
		return models.IngredientDetail{}, translate(ingredientEntity, err)
	}
	for _, row := range moved {
		recipeID := row.String(requirements.RecipeID)
		taken, err := s.count(ctx, requirements.Model, schema.Filter{requirements.RecipeID: recipeID, requirements.IngredientID: destID})
		if err != nil {
			return models.IngredientDetail{}, translate(ingredientEntity, err)
		}
		if taken > 0 {
			continue
		}
		err = s.driver.Write(ctx, requirements.Model,
			schema.Record{requirements.IngredientID: destID},
			schema.Filter{requirements.RecipeID: recipeID, requirements.IngredientID: srcID})
		if err != nil {
			return models.IngredientDetail{}, translate(ingredientEntity, err)
		}
	}

	if err := s.deleteIngredient(ctx, srcID, true); err != nil {
		return models.IngredientDetail{}, err
	}
	applog.Info(ctx, "ingredient merged", "into", destID, "from", srcID)

	return s.ShowIngredient(ctx, destID)
}
