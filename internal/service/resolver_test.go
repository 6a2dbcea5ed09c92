package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/apperrors"
	"github.com/pageza/recipe-catalog/backend/internal/mocks"
	"github.com/pageza/recipe-catalog/backend/internal/model"
)

func TestResolveReturnsExistingByID(t *testing.T) {
	store := new(mocks.MockRecipeStore)
	existing := &model.Ingredient{ID: 7, Name: "flour", Quantity: 500, Unit: "g"}
	store.On("FindIngredientByID", mock.Anything, uint(7)).Return(existing, nil)

	r := NewIngredientResolver(store, zap.NewNop())
	got, err := r.Resolve(context.Background(), IngredientDescriptor{ID: ptr(uint(7)), Name: "ignored", Quantity: 1, Unit: "kg"})

	require.NoError(t, err)
	assert.Same(t, existing, got)
	store.AssertNotCalled(t, "SaveIngredient", mock.Anything, mock.Anything)
}

func TestResolveStaleIDFallsBackToName(t *testing.T) {
	store := new(mocks.MockRecipeStore)
	existing := &model.Ingredient{ID: 3, Name: "flour", Quantity: 500, Unit: "g"}
	store.On("FindIngredientByID", mock.Anything, uint(99)).Return(nil, model.ErrIngredientNotFound)
	store.On("FindIngredientByName", mock.Anything, "flour").Return(existing, nil)

	r := NewIngredientResolver(store, nil)
	got, err := r.Resolve(context.Background(), IngredientDescriptor{ID: ptr(uint(99)), Name: " Flour "})

	require.NoError(t, err)
	assert.Equal(t, uint(3), got.ID)
}

func TestResolveExistingNameKeepsStoredAmounts(t *testing.T) {
	store := new(mocks.MockRecipeStore)
	existing := &model.Ingredient{ID: 3, Name: "flour", Quantity: 500, Unit: "g"}
	store.On("FindIngredientByName", mock.Anything, "flour").Return(existing, nil)

	r := NewIngredientResolver(store, nil)
	got, err := r.Resolve(context.Background(), IngredientDescriptor{Name: "FLOUR", Quantity: 2, Unit: "kg"})

	require.NoError(t, err)
	assert.Equal(t, 500.0, got.Quantity)
	assert.Equal(t, "g", got.Unit)
	store.AssertNotCalled(t, "SaveIngredient", mock.Anything, mock.Anything)
}

func TestResolveCreatesMissingIngredient(t *testing.T) {
	store := new(mocks.MockRecipeStore)
	store.On("FindIngredientByName", mock.Anything, "saffron").Return(nil, model.ErrIngredientNotFound)
	store.On("SaveIngredient", mock.Anything, mock.MatchedBy(func(ing *model.Ingredient) bool {
		return ing.Name == "saffron" && ing.Quantity == 0.5 && ing.Unit == "g"
	})).Return(&model.Ingredient{ID: 11, Name: "saffron", Quantity: 0.5, Unit: "g"}, nil)

	created := 0
	r := NewIngredientResolver(store, nil)
	r.OnCreate(func() { created++ })

	got, err := r.Resolve(context.Background(), IngredientDescriptor{Name: "Saffron", Quantity: 0.5, Unit: " g "})
	require.NoError(t, err)
	assert.Equal(t, uint(11), got.ID)
	assert.Equal(t, 1, created)
	store.AssertExpectations(t)
}

func TestResolveConcurrentCreateRetriesLookup(t *testing.T) {
	store := new(mocks.MockRecipeStore)
	winner := &model.Ingredient{ID: 5, Name: "basil", Quantity: 10, Unit: "g"}
	store.On("FindIngredientByName", mock.Anything, "basil").Return(nil, model.ErrIngredientNotFound).Once()
	store.On("SaveIngredient", mock.Anything, mock.Anything).Return(nil, model.ErrDuplicateIngredient).Once()
	store.On("FindIngredientByName", mock.Anything, "basil").Return(winner, nil).Once()

	r := NewIngredientResolver(store, nil)
	got, err := r.Resolve(context.Background(), IngredientDescriptor{Name: "basil", Quantity: 1, Unit: "bunch"})

	require.NoError(t, err)
	assert.Equal(t, uint(5), got.ID)
	store.AssertExpectations(t)
}

func TestResolveConcurrentCreateConflict(t *testing.T) {
	store := new(mocks.MockRecipeStore)
	store.On("FindIngredientByName", mock.Anything, "basil").Return(nil, model.ErrIngredientNotFound)
	store.On("SaveIngredient", mock.Anything, mock.Anything).Return(nil, model.ErrDuplicateIngredient)

	r := NewIngredientResolver(store, nil)
	_, err := r.Resolve(context.Background(), IngredientDescriptor{Name: "basil", Quantity: 1, Unit: "bunch"})

	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name      string
		desc      IngredientDescriptor
		wantField string
	}{
		{name: "blank name", desc: IngredientDescriptor{Name: "  ", Quantity: 1, Unit: "g"}, wantField: "name"},
		{name: "quantity too small", desc: IngredientDescriptor{Name: "salt", Quantity: 0.01, Unit: "g"}, wantField: "quantity"},
		{name: "blank unit", desc: IngredientDescriptor{Name: "salt", Quantity: 1, Unit: " "}, wantField: "unit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := new(mocks.MockRecipeStore)
			store.On("FindIngredientByName", mock.Anything, mock.Anything).Return(nil, model.ErrIngredientNotFound)

			_, err := NewIngredientResolver(store, nil).Resolve(context.Background(), tc.desc)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
			assert.Equal(t, tc.wantField, appErr.Field)
			store.AssertNotCalled(t, "SaveIngredient", mock.Anything, mock.Anything)
		})
	}
}

func TestResolveStoreFailure(t *testing.T) {
	store := new(mocks.MockRecipeStore)
	store.On("FindIngredientByName", mock.Anything, "salt").Return(nil, errors.New("connection reset"))

	_, err := NewIngredientResolver(store, nil).Resolve(context.Background(), IngredientDescriptor{Name: "salt"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInternal, appErr.Code)
}

func TestResolveAllPrefixesFieldWithIndex(t *testing.T) {
	store := new(mocks.MockRecipeStore)
	store.On("FindIngredientByName", mock.Anything, "salt").Return(&model.Ingredient{ID: 1, Name: "salt"}, nil)

	_, err := NewIngredientResolver(store, nil).ResolveAll(context.Background(), []IngredientDescriptor{
		{Name: "salt"},
		{Name: ""},
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "ingredients[1].name", appErr.Field)
}
