package schema

// RecipeModel is the typed descriptor of the recipes table.
type RecipeModel struct {
	*Model
	ID          *Field
	Name        *Field
	SimpleName  *Field
	Author      *Field
	Directions  *Field
	Information *Field
}

// IngredientModel is the typed descriptor of the ingredients table.
type IngredientModel struct {
	*Model
	ID            *Field
	Name          *Field
	SimpleName    *Field
	Dairy         *Field
	Meat          *Field
	Gluten        *Field
	AnimalProduct *Field
}

// LabelModel is the typed descriptor of the labels table.
type LabelModel struct {
	*Model
	ID         *Field
	Name       *Field
	SimpleName *Field
}

// RequirementModel links a recipe to an ingredient.
type RequirementModel struct {
	*Model
	RecipeID     *Field
	IngredientID *Field
	Quantity     *Field
	Optional     *Field
	Group        *Field
}

// TagModel links a recipe to a label.
type TagModel struct {
	*Model
	RecipeID *Field
	LabelID  *Field
}

// DependencyModel is a directed edge from a recipe to a recipe it requires.
type DependencyModel struct {
	*Model
	RequiredBy *Field
	Requisite  *Field
	Quantity   *Field
	Optional   *Field
}

var (
	Recipes      = newRecipeModel()
	Ingredients  = newIngredientModel()
	Labels       = newLabelModel()
	Requirements = newRequirementModel()
	Tags         = newTagModel()
	Dependencies = newDependencyModel()
)

// Models lists every entity kind, referenced tables first.
var Models = []*Model{
	Recipes.Model,
	Ingredients.Model,
	Labels.Model,
	Requirements.Model,
	Tags.Model,
	Dependencies.Model,
}

func newRecipeModel() RecipeModel {
	r := RecipeModel{
		ID:          &Field{Name: "id", Type: Text, Roles: PrimaryKey},
		Name:        &Field{Name: "name", Type: Text, Roles: Required},
		SimpleName:  &Field{Name: "simple_name", Type: Text},
		Author:      &Field{Name: "author", Type: Text, Default: ""},
		Directions:  &Field{Name: "directions", Type: Text, Default: ""},
		Information: &Field{Name: "information", Type: Text, Default: ""},
	}
	r.Model = newModel("recipe", "recipes", r.ID, r.Name, r.SimpleName, r.Author, r.Directions, r.Information)
	return r
}

func newIngredientModel() IngredientModel {
	i := IngredientModel{
		ID:            &Field{Name: "id", Type: Text, Roles: PrimaryKey},
		Name:          &Field{Name: "name", Type: Text, Roles: Required},
		SimpleName:    &Field{Name: "simple_name", Type: Text},
		Dairy:         &Field{Name: "dairy", Type: Boolean, Default: false},
		Meat:          &Field{Name: "meat", Type: Boolean, Default: false},
		Gluten:        &Field{Name: "gluten", Type: Boolean, Default: false},
		AnimalProduct: &Field{Name: "animal_product", Type: Boolean, Default: false},
	}
	i.Model = newModel("ingredient", "ingredients", i.ID, i.Name, i.SimpleName, i.Dairy, i.Meat, i.Gluten, i.AnimalProduct)
	return i
}

func newLabelModel() LabelModel {
	l := LabelModel{
		ID:         &Field{Name: "id", Type: Text, Roles: PrimaryKey},
		Name:       &Field{Name: "name", Type: Text, Roles: Required},
		SimpleName: &Field{Name: "simple_name", Type: Text},
	}
	l.Model = newModel("label", "labels", l.ID, l.Name, l.SimpleName)
	return l
}

func newRequirementModel() RequirementModel {
	r := RequirementModel{
		RecipeID:     &Field{Name: "recipe_id", Type: Text, Roles: PrimaryKey},
		IngredientID: &Field{Name: "ingredient_id", Type: Text, Roles: PrimaryKey},
		Quantity:     &Field{Name: "quantity", Type: Text, Default: ""},
		Optional:     &Field{Name: "optional", Type: Boolean, Default: false},
		Group:        &Field{Name: "group", Type: Text, Default: ""},
	}
	r.Model = newModel("requirement", "requirements", r.RecipeID, r.IngredientID, r.Quantity, r.Optional, r.Group)
	return r
}

func newTagModel() TagModel {
	t := TagModel{
		RecipeID: &Field{Name: "recipe_id", Type: Text, Roles: PrimaryKey},
		LabelID:  &Field{Name: "label_id", Type: Text, Roles: PrimaryKey},
	}
	t.Model = newModel("tag", "tags", t.RecipeID, t.LabelID)
	return t
}

func newDependencyModel() DependencyModel {
	d := DependencyModel{
		RequiredBy: &Field{Name: "required_by", Type: Text, Roles: PrimaryKey},
		Requisite:  &Field{Name: "requisite", Type: Text, Roles: PrimaryKey},
		Quantity:   &Field{Name: "quantity", Type: Text, Default: ""},
		Optional:   &Field{Name: "optional", Type: Boolean, Default: false},
	}
	d.Model = newModel("dependency", "dependencies", d.RequiredBy, d.Requisite, d.Quantity, d.Optional)
	return d
}
