package types

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// Validation messages shared by request binding and the partial update path
const (
	MsgNameRequired           = "Name is required and cannot be blank."
	MsgRecipeTypeRequired     = "Recipe type is required."
	MsgRecipeTypeInvalid      = "Recipe type must be one of VEGETARIAN, NON_VEGETARIAN."
	MsgServingsRequired       = "Servings are required."
	MsgServingsMin            = "Servings must be at least 1."
	MsgIngredientsEmpty       = "Ingredients list cannot be empty."
	MsgInstructionsRequired   = "Instructions are required and cannot be blank."
	MsgIngredientNameRequired = "Ingredient name is required and cannot be blank."
	MsgQuantityRequired       = "Quantity is required."
	MsgQuantityMin            = "Quantity must be at least 0.1."
	MsgUnitRequired           = "Unit is required and cannot be blank."
)

// RegisterValidators installs the custom rules used by the request types and
// reports field names by their json or form tag.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		return err
	}
	return v.RegisterValidation("recipetype", func(fl validator.FieldLevel) bool {
		_, err := model.ParseRecipeType(fl.Field().String())
		return err == nil
	})
}

// FieldPath returns the json path of a failed field, e.g. "ingredients[0].name"
func FieldPath(fe validator.FieldError) string {
	parts := strings.SplitN(fe.Namespace(), ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return fe.Field()
}

// ValidationMessage returns the user facing message for a failed rule
func ValidationMessage(fe validator.FieldError) string {
	inIngredient := strings.Contains(fe.StructNamespace(), "Ingredients[")
	switch fe.StructField() {
	case "Name":
		if inIngredient {
			return MsgIngredientNameRequired
		}
		return MsgNameRequired
	case "RecipeType":
		if fe.Tag() == "required" {
			return MsgRecipeTypeRequired
		}
		return MsgRecipeTypeInvalid
	case "Servings":
		if fe.Tag() == "required" {
			return MsgServingsRequired
		}
		return MsgServingsMin
	case "Ingredients":
		return MsgIngredientsEmpty
	case "Instructions":
		return MsgInstructionsRequired
	case "Quantity":
		if fe.Tag() == "required" {
			return MsgQuantityRequired
		}
		return MsgQuantityMin
	case "Unit":
		return MsgUnitRequired
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}
