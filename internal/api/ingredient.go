package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

type IngredientHandler struct {
	service service.IRecipeService
	logger  *zap.Logger
}

func NewIngredientHandler(svc service.IRecipeService, logger *zap.Logger) *IngredientHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngredientHandler{service: svc, logger: logger}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ingredients", h.ListIngredients)
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.service.ListIngredients(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if ingredients == nil {
		ingredients = []model.Ingredient{}
	}
	c.JSON(http.StatusOK, types.IngredientListResponse{
		Ingredients:      ingredients,
		TotalIngredients: len(ingredients),
	})
}
