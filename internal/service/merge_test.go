package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-catalog/backend/internal/apperrors"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

func ptr[T any](v T) *T { return &v }

func baseIngredients() []model.Ingredient {
	return []model.Ingredient{
		{ID: 1, Name: "flour", Quantity: 500, Unit: "g"},
		{ID: 2, Name: "sugar", Quantity: 100, Unit: "g"},
	}
}

func TestMergeUpdateByID(t *testing.T) {
	existing := baseIngredients()

	merged, err := Merge(existing, []types.IngredientChange{
		{ID: ptr(uint(2)), Quantity: ptr(150.0)},
	}, nil)
	require.NoError(t, err)

	require.Len(t, merged, 2)
	assert.Equal(t, model.Ingredient{ID: 2, Name: "sugar", Quantity: 150, Unit: "g"}, merged[1])
	assert.Equal(t, 100.0, existing[1].Quantity, "existing list must not be modified")
}

func TestMergeRenameByID(t *testing.T) {
	merged, err := Merge(baseIngredients(), []types.IngredientChange{
		{ID: ptr(uint(2)), Name: ptr("  Brown Sugar ")},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "brown sugar", merged[1].Name)
	assert.Equal(t, uint(2), merged[1].ID)
}

func TestMergeRenameToExistingNameFails(t *testing.T) {
	_, err := Merge(baseIngredients(), []types.IngredientChange{
		{ID: ptr(uint(2)), Name: ptr("FLOUR")},
	}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestMergeRenameChain(t *testing.T) {
	merged, err := Merge(baseIngredients(), []types.IngredientChange{
		{ID: ptr(uint(2)), Name: ptr("honey")},
		{ID: ptr(uint(1)), Name: ptr("sugar")},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"sugar", "honey"}, []string{merged[0].Name, merged[1].Name})
}

func TestMergeSwapFails(t *testing.T) {
	_, err := Merge(baseIngredients(), []types.IngredientChange{
		{ID: ptr(uint(1)), Name: ptr("sugar")},
		{ID: ptr(uint(2)), Name: ptr("flour")},
	}, nil)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "ingredients[0].name", appErr.Field)
}

func TestMergeUpdateByName(t *testing.T) {
	merged, err := Merge(baseIngredients(), []types.IngredientChange{
		{Name: ptr("Flour"), Unit: ptr("kg"), Quantity: ptr(0.5)},
	}, nil)
	require.NoError(t, err)

	require.Len(t, merged, 2)
	assert.Equal(t, model.Ingredient{ID: 1, Name: "flour", Quantity: 0.5, Unit: "kg"}, merged[0])
}

func TestMergeUnknownIDFallsBackToName(t *testing.T) {
	merged, err := Merge(baseIngredients(), []types.IngredientChange{
		{ID: ptr(uint(99)), Name: ptr("sugar"), Quantity: ptr(1.0)},
	}, nil)
	require.NoError(t, err)

	require.Len(t, merged, 2)
	assert.Equal(t, 1.0, merged[1].Quantity)
}

func TestMergeAddNewIngredient(t *testing.T) {
	merged, err := Merge(baseIngredients(), []types.IngredientChange{
		{Name: ptr("Eggs"), Quantity: ptr(2.0), Unit: ptr("pcs")},
	}, nil)
	require.NoError(t, err)

	require.Len(t, merged, 3)
	assert.Equal(t, model.Ingredient{Name: "eggs", Quantity: 2, Unit: "pcs"}, merged[2])
	assert.False(t, merged[2].Persisted())
}

func TestMergeAddedTwiceIsMergedOnce(t *testing.T) {
	merged, err := Merge(baseIngredients(), []types.IngredientChange{
		{Name: ptr("eggs"), Quantity: ptr(2.0), Unit: ptr("pcs")},
		{Name: ptr("EGGS"), Quantity: ptr(3.0)},
	}, nil)
	require.NoError(t, err)

	require.Len(t, merged, 3)
	assert.Equal(t, 3.0, merged[2].Quantity)
}

func TestMergeRemoveIsCaseInsensitive(t *testing.T) {
	merged, err := Merge(baseIngredients(), nil, []string{" SUGAR "})
	require.NoError(t, err)

	require.Len(t, merged, 1)
	assert.Equal(t, "flour", merged[0].Name)
}

func TestMergeRemoveRunsAfterAdditions(t *testing.T) {
	merged, err := Merge(baseIngredients(), []types.IngredientChange{
		{Name: ptr("eggs"), Quantity: ptr(2.0), Unit: ptr("pcs")},
	}, []string{"eggs"})
	require.NoError(t, err)

	assert.Equal(t, []string{"flour", "sugar"}, (&model.Recipe{Ingredients: merged}).IngredientNames())
}

func TestMergeRemoveUnknownNameIsNoop(t *testing.T) {
	merged, err := Merge(baseIngredients(), nil, []string{"saffron"})
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

func TestMergeValidation(t *testing.T) {
	tests := []struct {
		name      string
		change    types.IngredientChange
		wantField string
	}{
		{
			name:      "quantity below minimum",
			change:    types.IngredientChange{ID: ptr(uint(1)), Quantity: ptr(0.05)},
			wantField: "ingredients[0].quantity",
		},
		{
			name:      "blank name",
			change:    types.IngredientChange{Name: ptr("   ")},
			wantField: "ingredients[0].name",
		},
		{
			name:      "blank unit",
			change:    types.IngredientChange{Name: ptr("flour"), Unit: ptr("")},
			wantField: "ingredients[0].unit",
		},
		{
			name:      "no id match and no name",
			change:    types.IngredientChange{ID: ptr(uint(42)), Quantity: ptr(1.0)},
			wantField: "ingredients[0].name",
		},
		{
			name:      "new ingredient without quantity",
			change:    types.IngredientChange{Name: ptr("eggs"), Unit: ptr("pcs")},
			wantField: "ingredients[0].quantity",
		},
		{
			name:      "new ingredient without unit",
			change:    types.IngredientChange{Name: ptr("eggs"), Quantity: ptr(2.0)},
			wantField: "ingredients[0].unit",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			existing := baseIngredients()
			_, err := Merge(existing, []types.IngredientChange{tc.change}, nil)
			require.Error(t, err)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
			assert.Equal(t, tc.wantField, appErr.Field)
			assert.Equal(t, baseIngredients(), existing)
		})
	}
}

func TestMergeFailureLeavesExistingUntouched(t *testing.T) {
	existing := baseIngredients()

	_, err := Merge(existing, []types.IngredientChange{
		{ID: ptr(uint(1)), Quantity: ptr(900.0)},
		{Name: ptr("eggs")},
	}, nil)
	require.Error(t, err)

	assert.Equal(t, 500.0, existing[0].Quantity)
}
