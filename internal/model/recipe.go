package model

import (
	"fmt"
	"strings"
	"time"
)

// RecipeType is the dietary category of a recipe
type RecipeType string

const (
	RecipeTypeVegetarian    RecipeType = "VEGETARIAN"
	RecipeTypeNonVegetarian RecipeType = "NON_VEGETARIAN"
)

// RecipeTypes lists every accepted recipe type
var RecipeTypes = []RecipeType{RecipeTypeVegetarian, RecipeTypeNonVegetarian}

// Valid reports whether t is a known recipe type
func (t RecipeType) Valid() bool {
	for _, known := range RecipeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseRecipeType converts s to a RecipeType, ignoring case
func ParseRecipeType(s string) (RecipeType, error) {
	t := RecipeType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown recipe type %q", s)
	}
	return t, nil
}

// Recipe is a catalog recipe. Ingredients are not mapped by gorm; the repository
// loads and stores them through RecipeIngredient rows.
type Recipe struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"size:255;not null" json:"name"`
	RecipeType   RecipeType   `gorm:"size:32;not null;index" json:"recipeType"`
	Servings     int          `gorm:"not null;index" json:"servings"`
	Instructions string       `gorm:"type:text;not null" json:"instructions"`
	Ingredients  []Ingredient `gorm:"-" json:"ingredients"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// IngredientNames returns the recipe's ingredient names in order
func (r *Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}

// RecipeIngredient associates a recipe with a catalog ingredient.
// Position keeps the recipe's ingredient order stable.
type RecipeIngredient struct {
	RecipeID     uint `gorm:"primaryKey;autoIncrement:false"`
	IngredientID uint `gorm:"primaryKey;autoIncrement:false;index"`
	Position     int  `gorm:"not null"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
