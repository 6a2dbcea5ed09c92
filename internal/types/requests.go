package types

import (
	"strings"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// RecipeRequest is the body of a create or full replace
type RecipeRequest struct {
	Name         string              `json:"name" binding:"notblank"`
	RecipeType   model.RecipeType    `json:"recipeType" binding:"required,recipetype"`
	Servings     *int                `json:"servings" binding:"required,min=1"`
	Ingredients  []IngredientRequest `json:"ingredients" binding:"required,min=1,dive"`
	Instructions string              `json:"instructions" binding:"notblank"`
}

// IngredientRequest describes an ingredient to resolve against the catalog
type IngredientRequest struct {
	ID       *uint    `json:"id"`
	Name     string   `json:"name" binding:"notblank"`
	Quantity *float64 `json:"quantity" binding:"required,gte=0.1"`
	Unit     string   `json:"unit" binding:"notblank"`
}

// UpdateRecipeRequest is the body of a partial update. Unset fields are left untouched.
type UpdateRecipeRequest struct {
	Name              Optional[string]             `json:"name"`
	RecipeType        Optional[model.RecipeType]   `json:"recipeType"`
	Servings          Optional[int]                `json:"servings"`
	Ingredients       Optional[[]IngredientChange] `json:"ingredients"`
	Instructions      Optional[string]             `json:"instructions"`
	RemoveIngredients Optional[[]string]           `json:"removeIngredients"`
}

// IngredientChange is one entry of a partial ingredient update. Nil fields are absent.
type IngredientChange struct {
	ID       *uint    `json:"id"`
	Name     *string  `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
}

// TouchesIngredients reports whether the update merges ingredients.
// removeIngredients is only applied together with ingredients.
func (r *UpdateRecipeRequest) TouchesIngredients() bool {
	return r.Ingredients.Set
}

// SearchQuery binds the query string of a recipe search
type SearchQuery struct {
	RecipeType         string   `form:"recipeType" binding:"omitempty,recipetype"`
	Servings           *int     `form:"servings" binding:"omitempty,min=1"`
	IncludeIngredients []string `form:"includeIngredients"`
	ExcludeIngredients []string `form:"excludeIngredients"`
	SearchInstructions string   `form:"searchInstructions"`
}

// ToFilter converts the query into filter criteria. List parameters may be
// repeated or comma separated.
func (q SearchQuery) ToFilter() RecipeFilter {
	f := RecipeFilter{
		Servings:           q.Servings,
		IncludeIngredients: splitList(q.IncludeIngredients),
		ExcludeIngredients: splitList(q.ExcludeIngredients),
		SearchInstructions: q.SearchInstructions,
	}
	if q.RecipeType != "" {
		if t, err := model.ParseRecipeType(q.RecipeType); err == nil {
			f.RecipeType = &t
		}
	}
	return f
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
