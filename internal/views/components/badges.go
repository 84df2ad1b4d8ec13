// Package components renders HTML fragments for recipes.
package components

import "knife/models"

// Badges lists the dietary labels a classification earns.
func Badges(c models.Classification) []string {
	var out []string
	if c.Vegan() {
		out = append(out, "vegan")
	} else if c.Vegetarian() {
		out = append(out, "vegetarian")
	}
	if c.GlutenFree() {
		out = append(out, "gluten free")
	}
	return out
}
