package types

import "github.com/pageza/recipe-catalog/backend/internal/model"

// APIResponse is the envelope for single-resource results and errors
type APIResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Success bool        `json:"success"`
}

// RecipeListResponse is returned by list and search
type RecipeListResponse struct {
	Recipes      []model.Recipe `json:"recipes"`
	TotalRecipes int            `json:"totalRecipes"`
}

// IngredientListResponse is returned by the ingredient catalog listing
type IngredientListResponse struct {
	Ingredients      []model.Ingredient `json:"ingredients"`
	TotalIngredients int                `json:"totalIngredients"`
}

func NewRecipeListResponse(recipes []model.Recipe) RecipeListResponse {
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	return RecipeListResponse{Recipes: recipes, TotalRecipes: len(recipes)}
}

// NewErrorResponse builds the error envelope; data carries the HTTP status
func NewErrorResponse(status int, message string) APIResponse {
	return APIResponse{Message: message, Data: status, Success: false}
}
