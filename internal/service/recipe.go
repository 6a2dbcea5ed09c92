package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/apperrors"
	"github.com/pageza/recipe-catalog/backend/internal/metrics"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

const (
	msgIngredientNameTaken = "Ingredient name '%s' already exists in the catalog."
	msgRenameCycle         = "Ingredient renames conflict with each other."
)

// RecipeService handles recipe operations
type RecipeService struct {
	store    RecipeStore
	resolver *IngredientResolver
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewRecipeService creates a new RecipeService instance. m may be nil.
func NewRecipeService(store RecipeStore, logger *zap.Logger, m *metrics.Metrics) *RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := NewIngredientResolver(store, logger)
	resolver.OnCreate(m.IngredientCreated)
	return &RecipeService{
		store:    store,
		resolver: resolver,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// ListRecipes returns every recipe in storage order
func (s *RecipeService) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	recipes, err := s.store.ListRecipes(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list recipes", err)
	}
	return recipes, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*model.Recipe, error) {
	return s.loadRecipe(ctx, id)
}

// CreateRecipe resolves the request's ingredients against the catalog and stores a new recipe
func (s *RecipeService) CreateRecipe(ctx context.Context, req types.RecipeRequest) (*model.Recipe, error) {
	var saved *model.Recipe
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		recipe := &model.Recipe{}
		if err := s.applyRequest(ctx, recipe, req); err != nil {
			return err
		}
		now := s.now()
		recipe.CreatedAt = now
		recipe.UpdatedAt = now

		var err error
		saved, err = s.store.SaveRecipe(ctx, recipe)
		if err != nil {
			return apperrors.NewInternalError("failed to save recipe", err)
		}
		return nil
	})
	s.metrics.RecipeMutation("create", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("recipe created", zap.Uint("recipe_id", saved.ID), zap.Int("ingredients", len(saved.Ingredients)))
	return saved, nil
}

// ReplaceRecipe overwrites every field of an existing recipe
func (s *RecipeService) ReplaceRecipe(ctx context.Context, id uint, req types.RecipeRequest) (*model.Recipe, error) {
	var saved *model.Recipe
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		recipe, err := s.loadRecipe(ctx, id)
		if err != nil {
			return err
		}
		if err := s.applyRequest(ctx, recipe, req); err != nil {
			return err
		}
		recipe.UpdatedAt = s.now()

		saved, err = s.store.SaveRecipe(ctx, recipe)
		if err != nil {
			return apperrors.NewInternalError("failed to save recipe", err)
		}
		return nil
	})
	s.metrics.RecipeMutation("replace", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("recipe replaced", zap.Uint("recipe_id", id))
	return saved, nil
}

// UpdateRecipe applies a partial update. Fields not set on req keep their
// current values. Ingredient changes are merged into the current list; the
// whole update is rejected when any part of it is invalid.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uint, req types.UpdateRecipeRequest) (*model.Recipe, error) {
	if err := validateUpdate(&req); err != nil {
		s.metrics.RecipeMutation("update", err)
		return nil, err
	}

	var saved *model.Recipe
	err := s.store.Transaction(ctx, func(ctx context.Context) error {
		recipe, err := s.loadRecipe(ctx, id)
		if err != nil {
			return err
		}

		var merged []model.Ingredient
		if req.TouchesIngredients() {
			merged, err = Merge(recipe.Ingredients, req.Ingredients.Value, req.RemoveIngredients.Value)
			if err != nil {
				return err
			}
			if len(merged) == 0 {
				return apperrors.NewValidationError("ingredients", types.MsgIngredientsEmpty)
			}
		}

		applyUpdate(recipe, &req)

		if merged != nil {
			recipe.Ingredients, err = s.persistMerged(ctx, recipe.Ingredients, merged)
			if err != nil {
				return err
			}
		}
		recipe.UpdatedAt = s.now()

		saved, err = s.store.SaveRecipe(ctx, recipe)
		if err != nil {
			return apperrors.NewInternalError("failed to save recipe", err)
		}
		return nil
	})
	s.metrics.RecipeMutation("update", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("recipe updated", zap.Uint("recipe_id", id))
	return saved, nil
}

// DeleteRecipe deletes a recipe, failing with a not found error when it does not exist
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uint) error {
	err := s.deleteRecipe(ctx, id)
	s.metrics.RecipeMutation("delete", err)
	return err
}

func (s *RecipeService) deleteRecipe(ctx context.Context, id uint) error {
	exists, err := s.store.ExistsRecipeByID(ctx, id)
	if err != nil {
		return apperrors.NewInternalError("failed to check recipe", err)
	}
	if !exists {
		return apperrors.NewRecipeNotFoundError(id)
	}

	deleted, err := s.store.DeleteRecipeByID(ctx, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete recipe", err)
	}
	if !deleted {
		// removed by another request after the existence check
		return apperrors.NewRecipeNotFoundError(id)
	}
	s.logger.Info("recipe deleted", zap.Uint("recipe_id", id))
	return nil
}

// SearchRecipes returns the recipes matching every supplied criterion of filter
func (s *RecipeService) SearchRecipes(ctx context.Context, filter types.RecipeFilter) ([]model.Recipe, error) {
	filter = NormalizeFilter(filter)
	if filter.IsEmpty() {
		return s.ListRecipes(ctx)
	}
	if filter.SearchInstructions != "" && !s.foldsUnicodeCase() {
		return s.searchInMemory(ctx, filter)
	}
	recipes, err := s.store.FindRecipesByFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to search recipes", err)
	}
	return recipes, nil
}

// searchInMemory lets the store narrow by every criterion except the
// instruction text, which is then matched with Unicode case folding.
func (s *RecipeService) searchInMemory(ctx context.Context, filter types.RecipeFilter) ([]model.Recipe, error) {
	narrowed := filter
	narrowed.SearchInstructions = ""

	var (
		candidates []model.Recipe
		err        error
	)
	if narrowed.IsEmpty() {
		candidates, err = s.store.ListRecipes(ctx)
	} else {
		candidates, err = s.store.FindRecipesByFilter(ctx, narrowed)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to search recipes", err)
	}
	return Filter(candidates, filter), nil
}

func (s *RecipeService) foldsUnicodeCase() bool {
	if cf, ok := s.store.(CaseFolder); ok {
		return cf.FoldsUnicodeCase()
	}
	return true
}

// ListIngredients returns the ingredient catalog
func (s *RecipeService) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	ingredients, err := s.store.ListIngredients(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list ingredients", err)
	}
	return ingredients, nil
}

func (s *RecipeService) loadRecipe(ctx context.Context, id uint) (*model.Recipe, error) {
	recipe, err := s.store.FindRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrRecipeNotFound) {
			return nil, apperrors.NewRecipeNotFoundError(id)
		}
		return nil, apperrors.NewInternalError("failed to load recipe", err)
	}
	return recipe, nil
}

// applyRequest copies every field of a full request onto recipe
func (s *RecipeService) applyRequest(ctx context.Context, recipe *model.Recipe, req types.RecipeRequest) error {
	recipeType, err := model.ParseRecipeType(string(req.RecipeType))
	if err != nil {
		return apperrors.NewValidationError("recipeType", types.MsgRecipeTypeInvalid)
	}
	if req.Servings == nil || *req.Servings < 1 {
		return apperrors.NewValidationError("servings", types.MsgServingsMin)
	}
	if len(req.Ingredients) == 0 {
		return apperrors.NewValidationError("ingredients", types.MsgIngredientsEmpty)
	}

	descriptors := make([]IngredientDescriptor, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		descriptors = append(descriptors, DescriptorFromRequest(ing))
	}
	ingredients, err := s.resolver.ResolveAll(ctx, descriptors)
	if err != nil {
		return err
	}

	recipe.Name = req.Name
	recipe.RecipeType = recipeType
	recipe.Servings = *req.Servings
	recipe.Instructions = req.Instructions
	recipe.Ingredients = dedupeByID(ingredients)
	return nil
}

// persistMerged writes merged ingredients to the catalog. Ingredients that
// already have an id are updated when the merge changed them; new ones are
// resolved by name afterwards, so a name freed by a rename resolves to a new
// record, and take the merged quantity and unit.
func (s *RecipeService) persistMerged(ctx context.Context, before, merged []model.Ingredient) ([]model.Ingredient, error) {
	original := make(map[uint]model.Ingredient, len(before))
	for _, ing := range before {
		original[ing.ID] = ing
	}

	saved := make(map[uint]model.Ingredient, len(merged))
	var changed []model.Ingredient
	for _, ing := range merged {
		if !ing.Persisted() {
			continue
		}
		if prev, ok := original[ing.ID]; ok && sameContent(prev, ing) {
			saved[ing.ID] = ing
			continue
		}
		changed = append(changed, ing)
	}
	if err := s.saveChanged(ctx, original, changed, saved); err != nil {
		return nil, err
	}

	out := make([]model.Ingredient, 0, len(merged))
	for _, ing := range merged {
		if ing.Persisted() {
			out = append(out, saved[ing.ID])
			continue
		}

		resolved, err := s.resolver.Resolve(ctx, IngredientDescriptor{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit})
		if err != nil {
			return nil, err
		}
		if resolved.Quantity != ing.Quantity || resolved.Unit != ing.Unit {
			resolved.Quantity = ing.Quantity
			resolved.Unit = ing.Unit
			if resolved, err = s.saveIngredient(ctx, *resolved); err != nil {
				return nil, err
			}
		}
		out = append(out, *resolved)
	}
	return dedupeByID(out), nil
}

// saveChanged updates existing ingredients in passes. An ingredient renamed
// onto a name still held by another pending ingredient waits for the next
// pass, so rename chains accepted by Merge are written in a valid order.
func (s *RecipeService) saveChanged(ctx context.Context, original map[uint]model.Ingredient, pending []model.Ingredient, saved map[uint]model.Ingredient) error {
	for len(pending) > 0 {
		held := make(map[string]uint, len(pending))
		for _, ing := range pending {
			if prev, ok := original[ing.ID]; ok && prev.Name != ing.Name {
				held[prev.Name] = ing.ID
			}
		}

		var blocked []model.Ingredient
		for _, ing := range pending {
			if holder, ok := held[ing.Name]; ok && holder != ing.ID {
				blocked = append(blocked, ing)
				continue
			}
			out, err := s.saveIngredient(ctx, ing)
			if err != nil {
				return err
			}
			saved[ing.ID] = *out
		}

		if len(blocked) == len(pending) {
			return apperrors.NewValidationError("ingredients", msgRenameCycle)
		}
		pending = blocked
	}
	return nil
}

func (s *RecipeService) saveIngredient(ctx context.Context, ing model.Ingredient) (*model.Ingredient, error) {
	saved, err := s.store.SaveIngredient(ctx, &ing)
	if err == nil {
		return saved, nil
	}
	if errors.Is(err, model.ErrDuplicateIngredient) {
		return nil, apperrors.NewValidationError("ingredients", fmt.Sprintf(msgIngredientNameTaken, ing.Name))
	}
	return nil, apperrors.NewInternalError("failed to save ingredient", err)
}

// validateUpdate checks the scalar fields that are present on req
func validateUpdate(req *types.UpdateRecipeRequest) error {
	if v, ok := req.Name.Get(); ok && strings.TrimSpace(v) == "" {
		return apperrors.NewValidationError("name", types.MsgNameRequired)
	}
	if v, ok := req.RecipeType.Get(); ok {
		if _, err := model.ParseRecipeType(string(v)); err != nil {
			return apperrors.NewValidationError("recipeType", types.MsgRecipeTypeInvalid)
		}
	}
	if v, ok := req.Servings.Get(); ok && v < 1 {
		return apperrors.NewValidationError("servings", types.MsgServingsMin)
	}
	if v, ok := req.Instructions.Get(); ok && strings.TrimSpace(v) == "" {
		return apperrors.NewValidationError("instructions", types.MsgInstructionsRequired)
	}
	return nil
}

// applyUpdate copies the set scalar fields of req onto recipe
func applyUpdate(recipe *model.Recipe, req *types.UpdateRecipeRequest) {
	req.Name.Apply(func(v string) { recipe.Name = v })
	req.RecipeType.Apply(func(v model.RecipeType) {
		recipe.RecipeType, _ = model.ParseRecipeType(string(v))
	})
	req.Servings.Apply(func(v int) { recipe.Servings = v })
	req.Instructions.Apply(func(v string) { recipe.Instructions = v })
}

func sameContent(a, b model.Ingredient) bool {
	return a.Name == b.Name && a.Quantity == b.Quantity && a.Unit == b.Unit
}

func dedupeByID(ingredients []model.Ingredient) []model.Ingredient {
	seen := make(map[uint]struct{}, len(ingredients))
	out := ingredients[:0]
	for _, ing := range ingredients {
		if _, ok := seen[ing.ID]; ok {
			continue
		}
		seen[ing.ID] = struct{}{}
		out = append(out, ing)
	}
	return out
}
