package store

import (
	"context"

	"knife/internal/schema"
	"knife/models"
)

const tagEntity = "tag"

// AddTag tags a recipe with the label called name, creating the label when
// it does not exist yet.
func (s *Store) AddTag(ctx context.Context, recipeID string, p Params) (models.LabelSummary, error) {
	if len(p) == 0 {
		return models.LabelSummary{}, invalidQuery(tagEntity, "")
	}
	rec, err := s.decode(labels.Model, p, labels.Name)
	if err != nil {
		return models.LabelSummary{}, err
	}
	name, ok := rec[labels.Name].(string)
	if !ok {
		return models.LabelSummary{}, invalidQuery(tagEntity, labels.Name.Name)
	}

	unlock := s.lock(recipes.Model, labels.Model, tags.Model)
	defer unlock()

	if _, err := s.recipe(ctx, recipeID); err != nil {
		return models.LabelSummary{}, err
	}

	label, err := s.labelByName(ctx, name)
	if err != nil {
		return models.LabelSummary{}, err
	}
	if label == nil {
		created, err := s.createLabel(ctx, name)
		if err != nil {
			return models.LabelSummary{}, err
		}
		label = &created
	}

	key := schema.Filter{tags.RecipeID: recipeID, tags.LabelID: label.ID}
	existing, err := s.first(ctx, tags, key)
	if err != nil {
		return models.LabelSummary{}, translate(tagEntity, err)
	}
	if existing != nil {
		return models.LabelSummary{}, alreadyExists(tagEntity, models.Tag{RecipeID: recipeID, LabelID: label.ID})
	}

	if err := s.driver.Write(ctx, tags.Model, schema.Record{tags.RecipeID: recipeID, tags.LabelID: label.ID}); err != nil {
		return models.LabelSummary{}, translate(tagEntity, err)
	}
	return models.LabelSummary{ID: label.ID, Name: label.Name}, nil
}

// DeleteTag removes a label from a recipe. The label itself stays.
func (s *Store) DeleteTag(ctx context.Context, recipeID, labelID string) error {
	unlock := s.lock(labels.Model, tags.Model)
	defer unlock()

	if _, err := s.label(ctx, labelID); err != nil {
		return err
	}
	key := schema.Filter{tags.RecipeID: recipeID, tags.LabelID: labelID}
	existing, err := s.first(ctx, tags, key)
	if err != nil {
		return translate(tagEntity, err)
	}
	if existing == nil {
		return notFound(tagEntity, recipeID+"/"+labelID)
	}
	return translate(tagEntity, s.driver.Erase(ctx, tags.Model, key))
}
