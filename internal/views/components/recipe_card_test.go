package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"knife/models"
)

func TestRecipeCardRendersDetail(t *testing.T) {
	detail := models.RecipeDetail{
		Recipe: models.Recipe{ID: "f1", Name: "Fajitas", Author: "jb", Directions: "Sear & serve."},
		Requirements: []models.RequirementEntry{
			{Ingredient: models.IngredientSummary{ID: "i1", Name: "Bell Pepper"}, Quantity: "2"},
			{Ingredient: models.IngredientSummary{ID: "i2", Name: "Flour Tortilla"}, Optional: true},
		},
		Dependencies: []models.DependencyEntry{
			{Recipe: models.RecipeSummary{ID: "g1", Name: "Guacamole"}, Quantity: "1 cup"},
		},
		Tags:           []models.LabelSummary{{ID: "l1", Name: "mexican"}},
		Classification: models.Classification{Gluten: true},
	}

	var buf bytes.Buffer
	if err := RecipeCard(detail).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render recipe card: %v", err)
	}
	output := buf.String()
	for _, token := range []string{"Fajitas", "by jb", "Bell Pepper", "(optional)", `href="/recipes/g1/card"`, "1 cup", "#mexican", "Sear &amp; serve.", "vegan"} {
		if !strings.Contains(output, token) {
			t.Fatalf("expected output to contain %q: %s", token, output)
		}
	}
	if strings.Contains(output, "gluten free") {
		t.Fatalf("gluten recipe rendered as gluten free: %s", output)
	}
}

func TestRecipeCardOmitsEmptySections(t *testing.T) {
	detail := models.RecipeDetail{
		Recipe:         models.Recipe{ID: "h1", Name: "Horchata"},
		Classification: models.Classification{Dairy: true, AnimalProduct: true},
	}

	var buf bytes.Buffer
	if err := RecipeCard(detail).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render recipe card: %v", err)
	}
	output := buf.String()
	if !strings.HasPrefix(output, `<article class="recipe-card" id="recipe-h1">`) {
		t.Fatalf("unexpected card opening: %s", output)
	}
	for _, token := range []string{"class=\"author\"", "Ingredients", "Made with", "class=\"directions\"", "class=\"tags\""} {
		if strings.Contains(output, token) {
			t.Fatalf("expected %q to be left out: %s", token, output)
		}
	}
	if !strings.Contains(output, `<li class="badge">vegetarian</li>`) {
		t.Fatalf("expected vegetarian badge: %s", output)
	}
}

func TestRecipeCardStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := RecipeCard(models.RecipeDetail{}).Render(ctx, &buf); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", buf.String())
	}
}

func TestRecipeCardEscapesText(t *testing.T) {
	detail := models.RecipeDetail{Recipe: models.Recipe{ID: "x", Name: "<script>alert(1)</script>"}}

	var buf bytes.Buffer
	if err := RecipeCard(detail).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render recipe card: %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Fatalf("expected name to be escaped: %s", buf.String())
	}
}

func TestBadges(t *testing.T) {
	tests := []struct {
		name string
		in   models.Classification
		want string
	}{
		{"plain produce", models.Classification{}, "vegan,gluten free"},
		{"dairy", models.Classification{Dairy: true, AnimalProduct: true}, "vegetarian,gluten free"},
		{"meat and gluten", models.Classification{Meat: true, Gluten: true, AnimalProduct: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Join(Badges(tt.in), ","); got != tt.want {
				t.Fatalf("Badges(%+v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
