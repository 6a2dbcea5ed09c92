package types

import "github.com/pageza/recipe-catalog/backend/internal/model"

// RecipeFilter holds the optional search criteria. Every supplied criterion must hold.
type RecipeFilter struct {
	RecipeType         *model.RecipeType
	Servings           *int
	IncludeIngredients []string
	ExcludeIngredients []string
	SearchInstructions string
}

// IsEmpty reports whether no criterion is supplied
func (f RecipeFilter) IsEmpty() bool {
	return f.RecipeType == nil &&
		f.Servings == nil &&
		len(f.IncludeIngredients) == 0 &&
		len(f.ExcludeIngredients) == 0 &&
		f.SearchInstructions == ""
}
