package testhelpers

import (
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// RecipeFactory builds randomized but valid recipe requests
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a factory; a fixed seed gives reproducible data
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{faker: gofakeit.New(seed)}
}

// Ingredient returns a request for an ingredient named name, or a random one when name is empty
func (f *RecipeFactory) Ingredient(name string) types.IngredientRequest {
	if name == "" {
		name = strings.ToLower(f.faker.Vegetable())
	}
	quantity := float64(f.faker.IntRange(1, 50)) / 2
	return types.IngredientRequest{
		Name:     name,
		Quantity: &quantity,
		Unit:     f.faker.RandomString([]string{"g", "kg", "ml", "cup", "tbsp", "pcs"}),
	}
}

// Recipe returns a valid request using the given ingredient names
func (f *RecipeFactory) Recipe(ingredients ...string) types.RecipeRequest {
	if len(ingredients) == 0 {
		ingredients = []string{""}
	}
	seen := make(map[string]bool)
	reqs := make([]types.IngredientRequest, 0, len(ingredients))
	for _, name := range ingredients {
		ing := f.Ingredient(name)
		key := strings.ToLower(ing.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		reqs = append(reqs, ing)
	}

	servings := f.faker.IntRange(1, 8)
	recipeType := model.RecipeTypeVegetarian
	if f.faker.Bool() {
		recipeType = model.RecipeTypeNonVegetarian
	}
	return types.RecipeRequest{
		Name:         strings.TrimSpace(f.faker.Adjective() + " " + f.faker.Dinner()),
		RecipeType:   recipeType,
		Servings:     &servings,
		Ingredients:  reqs,
		Instructions: f.faker.Sentence(12),
	}
}
