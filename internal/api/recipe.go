package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/apperrors"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

const (
	msgRecipeAdded   = "Recipe successfully added"
	msgRecipeUpdated = "Recipe successfully updated"
	msgRecipeDeleted = "Recipe deleted successfully"
	msgRecipeFound   = "Recipe retrieved successfully"
)

type RecipeHandler struct {
	service service.IRecipeService
	logger  *zap.Logger
}

func NewRecipeHandler(svc service.IRecipeService, logger *zap.Logger) *RecipeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeHandler{service: svc, logger: logger}
}

// RegisterRoutes mounts the recipe routes. write runs before every mutating handler.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, write ...gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/search", h.SearchRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", chain(write, h.CreateRecipe)...)
		recipes.PUT("/:id", chain(write, h.ReplaceRecipe)...)
		recipes.PATCH("/:id", chain(write, h.UpdateRecipe)...)
		recipes.DELETE("/:id", chain(write, h.DeleteRecipe)...)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.service.ListRecipes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeListResponse(recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	recipe, err := h.service.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Message: msgRecipeFound, Data: recipe, Success: true})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	recipe, err := h.service.CreateRecipe(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, types.APIResponse{Message: msgRecipeAdded, Data: recipe.Name, Success: true})
}

// ReplaceRecipe handles PUT: every field is required and overwritten
func (h *RecipeHandler) ReplaceRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	recipe, err := h.service.ReplaceRecipe(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Message: msgRecipeUpdated, Data: recipe.Name, Success: true})
}

// UpdateRecipe handles PATCH: only supplied fields change
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	recipe, err := h.service.UpdateRecipe(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Message: msgRecipeUpdated, Data: recipe.Name, Success: true})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteRecipe(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.String(http.StatusOK, msgRecipeDeleted)
}

func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	var q types.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		if _, convErr := strconv.Atoi(c.Query("servings")); c.Query("servings") != "" && convErr != nil {
			err = apperrors.NewValidationError("servings", types.MsgServingsMin)
		}
		respondError(c, h.logger, err)
		return
	}

	recipes, err := h.service.SearchRecipes(c.Request.Context(), q.ToFilter())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeListResponse(recipes))
}

// recipeID parses the :id path parameter, writing a 400 when it is not a positive integer
func (h *RecipeHandler) recipeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, h.logger, apperrors.NewValidationError("id", "Recipe id must be a positive integer."))
		return 0, false
	}
	return uint(id), true
}
