package types

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))
	return v
}

func ptr[T any](v T) *T { return &v }

func validRecipeRequest() RecipeRequest {
	return RecipeRequest{
		Name:       "Pancakes",
		RecipeType: model.RecipeTypeVegetarian,
		Servings:   ptr(2),
		Ingredients: []IngredientRequest{
			{Name: "flour", Quantity: ptr(1.5), Unit: "cup"},
		},
		Instructions: "Mix and fry.",
	}
}

func firstFieldError(t *testing.T, err error) validator.FieldError {
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
	return verrs[0]
}

func TestRecipeRequestValid(t *testing.T) {
	assert.NoError(t, newValidator(t).Struct(validRecipeRequest()))
}

func TestRecipeRequestMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *RecipeRequest)
		path    string
		message string
	}{
		{"blank name", func(r *RecipeRequest) { r.Name = "   " }, "name", MsgNameRequired},
		{"missing type", func(r *RecipeRequest) { r.RecipeType = "" }, "recipeType", MsgRecipeTypeRequired},
		{"unknown type", func(r *RecipeRequest) { r.RecipeType = "VEGAN" }, "recipeType", MsgRecipeTypeInvalid},
		{"missing servings", func(r *RecipeRequest) { r.Servings = nil }, "servings", MsgServingsRequired},
		{"zero servings", func(r *RecipeRequest) { r.Servings = ptr(0) }, "servings", MsgServingsMin},
		{"no ingredients", func(r *RecipeRequest) { r.Ingredients = []IngredientRequest{} }, "ingredients", MsgIngredientsEmpty},
		{"blank instructions", func(r *RecipeRequest) { r.Instructions = "" }, "instructions", MsgInstructionsRequired},
		{"blank ingredient name", func(r *RecipeRequest) { r.Ingredients[0].Name = "" }, "ingredients[0].name", MsgIngredientNameRequired},
		{"small quantity", func(r *RecipeRequest) { r.Ingredients[0].Quantity = ptr(0.05) }, "ingredients[0].quantity", MsgQuantityMin},
		{"missing quantity", func(r *RecipeRequest) { r.Ingredients[0].Quantity = nil }, "ingredients[0].quantity", MsgQuantityRequired},
		{"blank unit", func(r *RecipeRequest) { r.Ingredients[0].Unit = " " }, "ingredients[0].unit", MsgUnitRequired},
	}

	v := newValidator(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRecipeRequest()
			tc.mutate(&req)
			fe := firstFieldError(t, v.Struct(req))
			assert.Equal(t, tc.path, FieldPath(fe))
			assert.Equal(t, tc.message, ValidationMessage(fe))
		})
	}
}

func TestSearchQueryToFilter(t *testing.T) {
	q := SearchQuery{
		RecipeType:         "vegetarian",
		Servings:           ptr(4),
		IncludeIngredients: []string{"Flour, sugar", "eggs"},
		ExcludeIngredients: []string{" ", "onion"},
		SearchInstructions: "Oven",
	}

	f := q.ToFilter()
	require.NotNil(t, f.RecipeType)
	assert.Equal(t, model.RecipeTypeVegetarian, *f.RecipeType)
	assert.Equal(t, 4, *f.Servings)
	assert.Equal(t, []string{"Flour", "sugar", "eggs"}, f.IncludeIngredients)
	assert.Equal(t, []string{"onion"}, f.ExcludeIngredients)
	assert.Equal(t, "Oven", f.SearchInstructions)
	assert.False(t, f.IsEmpty())
	assert.True(t, SearchQuery{}.ToFilter().IsEmpty())
}

func TestSearchQueryRejectsUnknownType(t *testing.T) {
	fe := firstFieldError(t, newValidator(t).Struct(SearchQuery{RecipeType: "vegan"}))
	assert.Equal(t, "recipeType", FieldPath(fe))
	assert.Equal(t, MsgRecipeTypeInvalid, ValidationMessage(fe))
}

func TestTouchesIngredients(t *testing.T) {
	assert.False(t, (&UpdateRecipeRequest{Name: Some("x")}).TouchesIngredients())
	assert.False(t, (&UpdateRecipeRequest{RemoveIngredients: Some([]string{})}).TouchesIngredients())
	assert.False(t, (&UpdateRecipeRequest{RemoveIngredients: Some([]string{"salt"})}).TouchesIngredients())
	assert.True(t, (&UpdateRecipeRequest{Ingredients: Some([]IngredientChange{})}).TouchesIngredients())
	assert.True(t, (&UpdateRecipeRequest{
		Ingredients:       Some([]IngredientChange{}),
		RemoveIngredients: Some([]string{"salt"}),
	}).TouchesIngredients())
}
