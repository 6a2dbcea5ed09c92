package service

import (
	"strings"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

type recipePredicate func(r *model.Recipe) bool

// NormalizeFilter lowercases the ingredient sets and the instruction substring
func NormalizeFilter(f types.RecipeFilter) types.RecipeFilter {
	f.IncludeIngredients = NormalizeAll(f.IncludeIngredients)
	f.ExcludeIngredients = NormalizeAll(f.ExcludeIngredients)
	f.SearchInstructions = strings.ToLower(f.SearchInstructions)
	return f
}

// compileFilter returns one predicate per supplied criterion
func compileFilter(f types.RecipeFilter) []recipePredicate {
	f = NormalizeFilter(f)
	var preds []recipePredicate

	if f.RecipeType != nil {
		want := *f.RecipeType
		preds = append(preds, func(r *model.Recipe) bool { return r.RecipeType == want })
	}
	if f.Servings != nil {
		want := *f.Servings
		preds = append(preds, func(r *model.Recipe) bool { return r.Servings == want })
	}
	if len(f.IncludeIngredients) > 0 {
		include := toSet(f.IncludeIngredients)
		preds = append(preds, func(r *model.Recipe) bool { return hasAny(r, include) })
	}
	if len(f.ExcludeIngredients) > 0 {
		exclude := toSet(f.ExcludeIngredients)
		preds = append(preds, func(r *model.Recipe) bool { return !hasAny(r, exclude) })
	}
	if f.SearchInstructions != "" {
		needle := f.SearchInstructions
		preds = append(preds, func(r *model.Recipe) bool {
			return strings.Contains(strings.ToLower(r.Instructions), needle)
		})
	}
	return preds
}

// Filter returns the recipes satisfying f, in input order and without
// duplicate ids. An empty filter returns every recipe.
func Filter(recipes []model.Recipe, f types.RecipeFilter) []model.Recipe {
	preds := compileFilter(f)
	seen := make(map[uint]struct{}, len(recipes))
	out := make([]model.Recipe, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		if r.ID != 0 {
			if _, dup := seen[r.ID]; dup {
				continue
			}
		}
		if !matchAll(r, preds) {
			continue
		}
		if r.ID != 0 {
			seen[r.ID] = struct{}{}
		}
		out = append(out, *r)
	}
	return out
}

func matchAll(r *model.Recipe, preds []recipePredicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

func hasAny(r *model.Recipe, names map[string]struct{}) bool {
	for _, ing := range r.Ingredients {
		if _, ok := names[Normalize(ing.Name)]; ok {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
