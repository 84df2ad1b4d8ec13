package models

// Classification is the OR of the dietary flags of every ingredient a recipe
// uses, directly or through its dependencies.
type Classification struct {
	Dairy         bool `json:"dairy"`
	Meat          bool `json:"meat"`
	Gluten        bool `json:"gluten"`
	AnimalProduct bool `json:"animal_product"`
}

// Add folds an ingredient's flags into the classification.
func (c Classification) Add(i Ingredient) Classification {
	return Classification{
		Dairy:         c.Dairy || i.Dairy,
		Meat:          c.Meat || i.Meat,
		Gluten:        c.Gluten || i.Gluten,
		AnimalProduct: c.AnimalProduct || i.AnimalProduct,
	}
}

func (c Classification) Vegetarian() bool {
	return !c.Meat
}

func (c Classification) Vegan() bool {
	return !c.Meat && !c.AnimalProduct && !c.Dairy
}

func (c Classification) GlutenFree() bool {
	return !c.Gluten
}
