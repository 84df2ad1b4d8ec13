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

const labelEntity = "label"

// CreateLabel stores a new label. Its simple_name must not be taken.
func (s *Store) CreateLabel(ctx context.Context, p Params) (models.Label, error) {
	if len(p) == 0 {
		return models.Label{}, invalidQuery(labelEntity, "")
	}
	rec, err := s.decode(labels.Model, p, labels.Name)
	if err != nil {
		return models.Label{}, err
	}
	name, ok := rec[labels.Name].(string)
	if !ok {
		return models.Label{}, invalidQuery(labelEntity, labels.Name.Name)
	}

	unlock := s.lock(labels.Model)
	defer unlock()

	existing, err := s.labelByName(ctx, name)
	if err != nil {
		return models.Label{}, err
	}
	if existing != nil {
		return models.Label{}, alreadyExists(labelEntity, *existing)
	}
	return s.createLabel(ctx, name)
}

func (s *Store) labelByName(ctx context.Context, name string) (*models.Label, error) {
	row, err := s.first(ctx, labels, schema.Filter{labels.SimpleName: schema.Simplify(name)})
	if err != nil {
		return nil, translate(labelEntity, err)
	}
	if row == nil {
		return nil, nil
	}
	l := models.LabelFromRecord(row)
	return &l, nil
}

func (s *Store) createLabel(ctx context.Context, name string) (models.Label, error) {
	rec := schema.Record{
		labels.ID:         schema.NewID(name),
		labels.Name:       name,
		labels.SimpleName: schema.Simplify(name),
	}
	if err := s.driver.Write(ctx, labels.Model, rec); err != nil {
		return models.Label{}, translate(labelEntity, err)
	}
	label := models.LabelFromRecord(rec)
	applog.Info(ctx, "label created", "id", label.ID, "name", label.Name)
	return label, nil
}

// LookupLabels lists labels matching the given values.
func (s *Store) LookupLabels(ctx context.Context, p Params) ([]models.Label, error) {
	rec, err := s.decodeLookup(labels.Model, p, labels.ID, labels.Name)
	if err != nil {
		return nil, err
	}
	where, id := lookupFilter(rec, labels.ID, labels.Name, labels.SimpleName)
	if id != "" {
		where[labels.ID] = id
	}

	rows, err := s.driver.Read(ctx, labels, driver.Query{Filters: []schema.Filter{where}, Mode: filter.Substring})
	if err != nil {
		return nil, translate(labelEntity, err)
	}

	out := make([]models.Label, 0, len(rows))
	for _, row := range rows {
		l := models.LabelFromRecord(row)
		if id != "" && l.ID != id {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SimpleName < out[j].SimpleName })
	return out, nil
}

func (s *Store) label(ctx context.Context, id string) (models.Label, error) {
	row, err := s.first(ctx, labels, schema.Filter{labels.ID: id})
	if err != nil {
		return models.Label{}, translate(labelEntity, err)
	}
	if row == nil {
		return models.Label{}, notFound(labelEntity, id)
	}
	return models.LabelFromRecord(row), nil
}

// ShowLabel returns a label and the recipes tagged with it.
func (s *Store) ShowLabel(ctx context.Context, id string) (models.LabelDetail, error) {
	label, err := s.label(ctx, id)
	if err != nil {
		return models.LabelDetail{}, err
	}
	tagged, err := graph.TaggedRecipes(ctx, s.driver, id)
	if err != nil {
		return models.LabelDetail{}, translate(labelEntity, err)
	}
	return models.LabelDetail{Label: label, TaggedRecipes: tagged}, nil
}

// EditLabel renames a label.
func (s *Store) EditLabel(ctx context.Context, id string, p Params) (models.Label, error) {
	if len(p) == 0 {
		return models.Label{}, invalidQuery(labelEntity, "")
	}
	rec, err := s.decode(labels.Model, p, labels.Name)
	if err != nil {
		return models.Label{}, err
	}

	unlock := s.lock(labels.Model)
	defer unlock()

	if _, err := s.label(ctx, id); err != nil {
		return models.Label{}, err
	}
	name := rec.String(labels.Name)
	clash, err := s.labelByName(ctx, name)
	if err != nil {
		return models.Label{}, err
	}
	if clash != nil && clash.ID != id {
		return models.Label{}, alreadyExists(labelEntity, *clash)
	}
	rec[labels.SimpleName] = schema.Simplify(name)

	if err := s.driver.Write(ctx, labels.Model, rec, schema.Filter{labels.ID: id}); err != nil {
		return models.Label{}, translate(labelEntity, err)
	}
	return s.label(ctx, id)
}

// DeleteLabel removes a label. Tagged recipes block it with InUse unless
// cascade is set, in which case the tags go first.
func (s *Store) DeleteLabel(ctx context.Context, id string, cascade bool) error {
	unlock := s.lock(labels.Model, tags.Model)
	defer unlock()

	if _, err := s.label(ctx, id); err != nil {
		return err
	}

	uses, err := s.count(ctx, tags.Model, schema.Filter{tags.LabelID: id})
	if err != nil {
		return translate(labelEntity, err)
	}
	if uses > 0 {
		if !cascade {
			return inUse(labelEntity, id, uses)
		}
		if err := s.driver.Erase(ctx, tags.Model, schema.Filter{tags.LabelID: id}); err != nil {
			return translate(labelEntity, err)
		}
	}

	if err := s.driver.Erase(ctx, labels.Model, schema.Filter{labels.ID: id}); err != nil {
		return translate(labelEntity, err)
	}
	applog.Info(ctx, "label deleted", "id", id, "tags", uses)
	return nil
}
