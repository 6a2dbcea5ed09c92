package service

import (
	"context"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// RecipeStore is the storage collaborator of the recipe service.
// Lookups of missing rows return model.ErrRecipeNotFound or model.ErrIngredientNotFound;
// creating an ingredient whose name is taken returns model.ErrDuplicateIngredient.
type RecipeStore interface {
	FindRecipeByID(ctx context.Context, id uint) (*model.Recipe, error)
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
	FindRecipesByFilter(ctx context.Context, filter types.RecipeFilter) ([]model.Recipe, error)
	SaveRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
	DeleteRecipeByID(ctx context.Context, id uint) (bool, error)
	ExistsRecipeByID(ctx context.Context, id uint) (bool, error)

	FindIngredientByID(ctx context.Context, id uint) (*model.Ingredient, error)
	FindIngredientByName(ctx context.Context, name string) (*model.Ingredient, error)
	SaveIngredient(ctx context.Context, ingredient *model.Ingredient) (*model.Ingredient, error)
	ListIngredients(ctx context.Context) ([]model.Ingredient, error)

	// Transaction runs fn in a single storage transaction carried by the ctx passed to fn
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CaseFolder is implemented by stores that can report whether their SQL
// LOWER handles non-ASCII text. Stores that do not implement it are assumed to.
type CaseFolder interface {
	FoldsUnicodeCase() bool
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
	GetRecipe(ctx context.Context, id uint) (*model.Recipe, error)
	CreateRecipe(ctx context.Context, req types.RecipeRequest) (*model.Recipe, error)
	ReplaceRecipe(ctx context.Context, id uint, req types.RecipeRequest) (*model.Recipe, error)
	UpdateRecipe(ctx context.Context, id uint, req types.UpdateRecipeRequest) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id uint) error
	SearchRecipes(ctx context.Context, filter types.RecipeFilter) ([]model.Recipe, error)
	ListIngredients(ctx context.Context) ([]model.Ingredient, error)
}

var _ IRecipeService = (*RecipeService)(nil)
