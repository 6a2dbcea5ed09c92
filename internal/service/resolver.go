package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/apperrors"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// IngredientDescriptor identifies an ingredient by id or by name, with the
// quantity and unit to use if it has to be created.
type IngredientDescriptor struct {
	ID       *uint
	Name     string
	Quantity float64
	Unit     string
}

// DescriptorFromRequest converts a bound request ingredient
func DescriptorFromRequest(req types.IngredientRequest) IngredientDescriptor {
	d := IngredientDescriptor{ID: req.ID, Name: req.Name, Unit: req.Unit}
	if req.Quantity != nil {
		d.Quantity = *req.Quantity
	}
	return d
}

// IngredientResolver finds or creates catalog ingredients
type IngredientResolver struct {
	store   RecipeStore
	logger  *zap.Logger
	created func()
}

// NewIngredientResolver creates a new IngredientResolver instance
func NewIngredientResolver(store RecipeStore, logger *zap.Logger) *IngredientResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngredientResolver{store: store, logger: logger, created: func() {}}
}

// OnCreate registers a callback invoked whenever a new ingredient is persisted
func (r *IngredientResolver) OnCreate(fn func()) {
	if fn != nil {
		r.created = fn
	}
}

// Resolve returns the catalog ingredient matching d. A stored ingredient is
// returned unchanged; a missing one is created from d. A stale id falls back
// to name resolution.
func (r *IngredientResolver) Resolve(ctx context.Context, d IngredientDescriptor) (*model.Ingredient, error) {
	if d.ID != nil && *d.ID != 0 {
		ing, err := r.store.FindIngredientByID(ctx, *d.ID)
		if err == nil {
			return ing, nil
		}
		if !errors.Is(err, model.ErrIngredientNotFound) {
			return nil, apperrors.NewInternalError("failed to look up ingredient", err)
		}
		r.logger.Debug("ingredient id not found, resolving by name",
			zap.Uint("ingredient_id", *d.ID),
			zap.String("name", d.Name),
		)
	}

	name := Normalize(d.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", types.MsgIngredientNameRequired)
	}

	ing, err := r.store.FindIngredientByName(ctx, name)
	if err == nil {
		return ing, nil
	}
	if !errors.Is(err, model.ErrIngredientNotFound) {
		return nil, apperrors.NewInternalError("failed to look up ingredient", err)
	}

	if d.Quantity < model.MinQuantity {
		return nil, apperrors.NewValidationError("quantity", types.MsgQuantityMin)
	}
	unit := strings.TrimSpace(d.Unit)
	if unit == "" {
		return nil, apperrors.NewValidationError("unit", types.MsgUnitRequired)
	}

	created, err := r.store.SaveIngredient(ctx, &model.Ingredient{Name: name, Quantity: d.Quantity, Unit: unit})
	if err == nil {
		r.created()
		r.logger.Debug("created ingredient", zap.Uint("ingredient_id", created.ID), zap.String("name", name))
		return created, nil
	}
	if !errors.Is(err, model.ErrDuplicateIngredient) {
		return nil, apperrors.NewInternalError("failed to create ingredient", err)
	}

	// A concurrent request created the same name between our lookup and insert.
	r.logger.Info("ingredient created concurrently, retrying as lookup", zap.String("name", name))
	ing, err = r.store.FindIngredientByName(ctx, name)
	if err == nil {
		return ing, nil
	}
	return nil, apperrors.NewConflictError(fmt.Sprintf("ingredient %q is being created concurrently, please retry", name)).WithCause(err)
}

// ResolveAll resolves each descriptor independently, preserving order
func (r *IngredientResolver) ResolveAll(ctx context.Context, ds []IngredientDescriptor) ([]model.Ingredient, error) {
	out := make([]model.Ingredient, 0, len(ds))
	for i, d := range ds {
		ing, err := r.Resolve(ctx, d)
		if err != nil {
			if appErr, ok := apperrors.As(err); ok && appErr.Field != "" {
				appErr.Field = fmt.Sprintf("ingredients[%d].%s", i, appErr.Field)
			}
			return nil, err
		}
		out = append(out, *ing)
	}
	return out, nil
}
