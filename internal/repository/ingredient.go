package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// FindIngredientByID loads a catalog ingredient
func (s *Store) FindIngredientByID(ctx context.Context, id uint) (*model.Ingredient, error) {
	var ing model.Ingredient
	if err := s.conn(ctx).First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to find ingredient %d: %w", id, err)
	}
	return &ing, nil
}

// FindIngredientByName looks up an ingredient by name, ignoring case
func (s *Store) FindIngredientByName(ctx context.Context, name string) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := s.conn(ctx).Where("name = ?", strings.ToLower(strings.TrimSpace(name))).First(&ing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to find ingredient %q: %w", name, err)
	}
	return &ing, nil
}

// SaveIngredient inserts a new ingredient or updates an existing one. The
// write runs in its own savepoint so a unique violation does not abort an
// enclosing transaction.
func (s *Store) SaveIngredient(ctx context.Context, ing *model.Ingredient) (*model.Ingredient, error) {
	ing.Name = strings.ToLower(strings.TrimSpace(ing.Name))
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if ing.ID == 0 {
			return tx.Create(ing).Error
		}
		return tx.Save(ing).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", model.ErrDuplicateIngredient, ing.Name)
		}
		return nil, fmt.Errorf("failed to save ingredient %q: %w", ing.Name, err)
	}
	return ing, nil
}

// ListIngredients returns the catalog ordered by name
func (s *Store) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	ingredients := []model.Ingredient{}
	if err := s.conn(ctx).Order("name").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
