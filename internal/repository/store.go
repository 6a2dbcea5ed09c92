// Package repository implements the recipe store on top of gorm
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

type txKey struct{}

// Store persists recipes, ingredients and their association rows.
// Recipes and ingredients are written separately; nothing cascades.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store instance
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// conn returns the transaction carried by ctx, or the base connection
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Transaction runs fn inside a transaction. Nested calls use savepoints.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// FindRecipeByID loads a recipe with its ingredients
func (s *Store) FindRecipeByID(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.conn(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to find recipe %d: %w", id, err)
	}

	recipes := []model.Recipe{recipe}
	if err := s.loadIngredients(ctx, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// ListRecipes returns every recipe ordered by id
func (s *Store) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	return s.findRecipes(ctx, s.conn(ctx).Model(&model.Recipe{}))
}

// FoldsUnicodeCase reports whether LOWER in SQL lowercases non-ASCII text.
// sqlite's LOWER only folds ASCII.
func (s *Store) FoldsUnicodeCase() bool {
	return s.db.Dialector.Name() != "sqlite"
}

// FindRecipesByFilter returns the recipes matching every supplied criterion.
// Criteria are expected in normalized (lowercase) form. Ingredient criteria
// are correlated subqueries, so each recipe appears at most once.
func (s *Store) FindRecipesByFilter(ctx context.Context, f types.RecipeFilter) ([]model.Recipe, error) {
	db := s.conn(ctx)
	query := db.Model(&model.Recipe{})

	if f.RecipeType != nil {
		query = query.Where("recipes.recipe_type = ?", *f.RecipeType)
	}
	if f.Servings != nil {
		query = query.Where("recipes.servings = ?", *f.Servings)
	}
	if len(f.IncludeIngredients) > 0 {
		query = query.Where("EXISTS (?)", ingredientSubquery(db, f.IncludeIngredients))
	}
	if len(f.ExcludeIngredients) > 0 {
		query = query.Where("NOT EXISTS (?)", ingredientSubquery(db, f.ExcludeIngredients))
	}
	if f.SearchInstructions != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.SearchInstructions)) + "%"
		query = query.Where(`LOWER(recipes.instructions) LIKE ? ESCAPE '\'`, pattern)
	}

	return s.findRecipes(ctx, query)
}

func ingredientSubquery(db *gorm.DB, names []string) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Table("recipe_ingredients AS ri").
		Select("1").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("ri.recipe_id = recipes.id AND LOWER(i.name) IN ?", names)
}

// escapeLike escapes LIKE wildcards so user input only matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *Store) findRecipes(ctx context.Context, query *gorm.DB) ([]model.Recipe, error) {
	recipes := []model.Recipe{}
	if err := query.Order("recipes.id").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	if err := s.loadIngredients(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

type recipeIngredientRow struct {
	RecipeID     uint
	IngredientID uint
	Name         string
	Quantity     float64
	Unit         string
}

// loadIngredients fills Ingredients on each recipe in association order
func (s *Store) loadIngredients(ctx context.Context, recipes []model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(recipes))
	index := make(map[uint]int, len(recipes))
	for i := range recipes {
		ids = append(ids, recipes[i].ID)
		index[recipes[i].ID] = i
		recipes[i].Ingredients = []model.Ingredient{}
	}

	var rows []recipeIngredientRow
	err := s.conn(ctx).
		Table("recipe_ingredients AS ri").
		Select("ri.recipe_id, i.id AS ingredient_id, i.name, i.quantity, i.unit").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("ri.recipe_id IN ?", ids).
		Order("ri.recipe_id, ri.position").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to load recipe ingredients: %w", err)
	}

	for _, row := range rows {
		i := index[row.RecipeID]
		recipes[i].Ingredients = append(recipes[i].Ingredients, model.Ingredient{
			ID:       row.IngredientID,
			Name:     row.Name,
			Quantity: row.Quantity,
			Unit:     row.Unit,
		})
	}
	return nil
}

// SaveRecipe inserts or updates the recipe row and rewrites its association
// rows. Every ingredient must already be persisted.
func (s *Store) SaveRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	for _, ing := range recipe.Ingredients {
		if !ing.Persisted() {
			return nil, fmt.Errorf("ingredient %q must be saved before the recipe", ing.Name)
		}
	}

	err := s.Transaction(ctx, func(ctx context.Context) error {
		db := s.conn(ctx)
		if recipe.ID == 0 {
			if err := db.Create(recipe).Error; err != nil {
				return fmt.Errorf("failed to create recipe: %w", err)
			}
		} else if err := db.Save(recipe).Error; err != nil {
			return fmt.Errorf("failed to update recipe %d: %w", recipe.ID, err)
		}

		if err := db.Where("recipe_id = ?", recipe.ID).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		if len(recipe.Ingredients) == 0 {
			return nil
		}
		links := make([]model.RecipeIngredient, 0, len(recipe.Ingredients))
		for pos, ing := range recipe.Ingredients {
			links = append(links, model.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ing.ID, Position: pos})
		}
		if err := db.Create(&links).Error; err != nil {
			return fmt.Errorf("failed to save recipe ingredients: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// DeleteRecipeByID removes a recipe and its association rows. Ingredients stay in the catalog.
func (s *Store) DeleteRecipeByID(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := s.Transaction(ctx, func(ctx context.Context) error {
		db := s.conn(ctx)
		if err := db.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to delete recipe ingredients: %w", err)
		}
		res := db.Delete(&model.Recipe{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete recipe %d: %w", id, res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// ExistsRecipeByID reports whether a recipe with id exists
func (s *Store) ExistsRecipeByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.conn(ctx).Model(&model.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check recipe %d: %w", id, err)
	}
	return count > 0, nil
}
