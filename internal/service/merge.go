package service

import (
	"fmt"
	"strings"

	"github.com/pageza/recipe-catalog/backend/internal/apperrors"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

const msgDuplicateIngredient = "Ingredient is already part of the recipe."

// Merge reconciles existing with a partial ingredient change set and returns
// the resulting list. Entries are matched by id first, then by normalized
// name; unmatched entries are appended. Names in remove are dropped last,
// ignoring case. existing is never modified, so a validation error leaves
// the caller's ingredients exactly as they were.
func Merge(existing []model.Ingredient, incoming []types.IngredientChange, remove []string) ([]model.Ingredient, error) {
	working := make([]model.Ingredient, len(existing), len(existing)+len(incoming))
	copy(working, existing)

	byID := make(map[uint]int, len(working))
	byName := make(map[string]int, len(working))
	for i, ing := range working {
		if ing.ID != 0 {
			byID[ing.ID] = i
		}
		byName[Normalize(ing.Name)] = i
	}

	for i, change := range incoming {
		field := fmt.Sprintf("ingredients[%d]", i)
		if err := validateChange(field, change); err != nil {
			return nil, err
		}

		if change.ID != nil {
			if idx, ok := byID[*change.ID]; ok {
				if err := updateByID(working, idx, change, byName, field); err != nil {
					return nil, err
				}
				continue
			}
		}

		if change.Name == nil {
			return nil, apperrors.NewValidationError(field+".name", types.MsgIngredientNameRequired)
		}
		name := Normalize(*change.Name)
		if idx, ok := byName[name]; ok {
			applyAmount(&working[idx], change)
			continue
		}

		if change.Quantity == nil {
			return nil, apperrors.NewValidationError(field+".quantity", types.MsgQuantityRequired)
		}
		if change.Unit == nil {
			return nil, apperrors.NewValidationError(field+".unit", types.MsgUnitRequired)
		}
		working = append(working, model.Ingredient{
			Name:     name,
			Quantity: *change.Quantity,
			Unit:     strings.TrimSpace(*change.Unit),
		})
		byName[name] = len(working) - 1
	}

	if len(remove) == 0 {
		return working, nil
	}
	drop := make(map[string]struct{}, len(remove))
	for _, name := range remove {
		drop[Normalize(name)] = struct{}{}
	}
	kept := working[:0]
	for _, ing := range working {
		if _, ok := drop[Normalize(ing.Name)]; !ok {
			kept = append(kept, ing)
		}
	}
	return kept, nil
}

// validateChange checks the fields present on a change. Absent fields are not checked here.
func validateChange(field string, c types.IngredientChange) error {
	if c.Name != nil && Normalize(*c.Name) == "" {
		return apperrors.NewValidationError(field+".name", types.MsgIngredientNameRequired)
	}
	if c.Quantity != nil && *c.Quantity < model.MinQuantity {
		return apperrors.NewValidationError(field+".quantity", types.MsgQuantityMin)
	}
	if c.Unit != nil && strings.TrimSpace(*c.Unit) == "" {
		return apperrors.NewValidationError(field+".unit", types.MsgUnitRequired)
	}
	return nil
}

func updateByID(working []model.Ingredient, idx int, c types.IngredientChange, byName map[string]int, field string) error {
	if c.Name != nil {
		name := Normalize(*c.Name)
		old := Normalize(working[idx].Name)
		if name != old {
			if _, taken := byName[name]; taken {
				return apperrors.NewValidationError(field+".name", msgDuplicateIngredient)
			}
			delete(byName, old)
			byName[name] = idx
		}
		working[idx].Name = name
	}
	applyAmount(&working[idx], c)
	return nil
}

func applyAmount(ing *model.Ingredient, c types.IngredientChange) {
	if c.Quantity != nil {
		ing.Quantity = *c.Quantity
	}
	if c.Unit != nil {
		ing.Unit = strings.TrimSpace(*c.Unit)
	}
}
