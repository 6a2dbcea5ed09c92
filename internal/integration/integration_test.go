package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/metrics"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/repository"
	"github.com/pageza/recipe-catalog/backend/internal/server"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
)

const secret = "integration-secret"

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path, body string) (int, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func (c *client) recipeID(name string) string {
	c.t.Helper()
	code, body := c.do(http.MethodGet, "/api/v1/recipes", "")
	require.Equal(c.t, http.StatusOK, code)
	for _, r := range body["recipes"].([]any) {
		recipe := r.(map[string]any)
		if recipe["name"] == name {
			return jsonNumber(recipe["id"])
		}
	}
	c.t.Fatalf("recipe %q not listed", name)
	return ""
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func startServer(t *testing.T, db *gorm.DB) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	m := metrics.New()
	deps := api.Dependencies{
		Service: service.NewRecipeService(repository.NewStore(db), log, m),
		Logger:  log,
		DB:      db,
		Metrics: m,
		Auth:    middleware.NewJWTValidator(secret, middleware.TokenIssuer),
		Limiter: middleware.NewLocalRateLimiter(middleware.RateLimitConfig{Window: time.Minute, Limit: 100}),
	}
	srv, err := server.New(&config.Config{ServerPort: "0"}, deps)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	token, err := middleware.NewJWTValidator(secret, middleware.TokenIssuer).SignToken("integration", time.Hour)
	require.NoError(t, err)
	return &client{t: t, base: ts.URL, token: token}
}

func runCatalogScenario(t *testing.T, c *client) {
	anonymous := &client{t: t, base: c.base}
	code, _ := anonymous.do(http.MethodPost, "/api/v1/recipes", `{}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := c.do(http.MethodPost, "/api/v1/recipes", `{
		"name": "Tomato Soup",
		"recipeType": "VEGETARIAN",
		"servings": 4,
		"ingredients": [
			{"name": "Tomato", "quantity": 6, "unit": "pcs"},
			{"name": "Basil", "quantity": 0.5, "unit": "bunch"}
		],
		"instructions": "Simmer the tomatoes, blend with basil"
	}`)
	require.Equal(t, http.StatusCreated, code, body)

	code, body = c.do(http.MethodPost, "/api/v1/recipes", `{
		"name": "Chicken Stew",
		"recipeType": "NON_VEGETARIAN",
		"servings": 2,
		"ingredients": [
			{"name": "chicken", "quantity": 1, "unit": "kg"},
			{"name": "TOMATO", "quantity": 6, "unit": "pcs"}
		],
		"instructions": "Brown the chicken in the oven, then stew"
	}`)
	require.Equal(t, http.StatusCreated, code, body)

	code, body = c.do(http.MethodGet, "/api/v1/ingredients", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, body["totalIngredients"])

	code, body = c.do(http.MethodGet, "/api/v1/recipes/search?includeIngredients=tomato&excludeIngredients=chicken", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["totalRecipes"])

	code, body = c.do(http.MethodGet, "/api/v1/recipes/search?searchInstructions=OVEN&servings=2", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["totalRecipes"])

	soup := c.recipeID("Tomato Soup")
	code, body = c.do(http.MethodPatch, "/api/v1/recipes/"+soup, `{
		"servings": 6,
		"ingredients": [{"name": "cream", "quantity": 200, "unit": "ml"}],
		"removeIngredients": ["basil"]
	}`)
	require.Equal(t, http.StatusOK, code, body)

	code, body = c.do(http.MethodGet, "/api/v1/recipes/"+soup, "")
	require.Equal(t, http.StatusOK, code)
	recipe := body["data"].(map[string]any)
	assert.EqualValues(t, 6, recipe["servings"])
	var names []string
	for _, ing := range recipe["ingredients"].([]any) {
		names = append(names, ing.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"tomato", "cream"}, names)

	code, _ = c.do(http.MethodDelete, "/api/v1/recipes/"+soup, "")
	require.Equal(t, http.StatusOK, code)
	code, body = c.do(http.MethodGet, "/api/v1/recipes/"+soup, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])

	code, body = c.do(http.MethodGet, "/api/v1/ingredients", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 4, body["totalIngredients"], "ingredients outlive deleted recipes")
}

func TestCatalogSQLite(t *testing.T) {
	runCatalogScenario(t, startServer(t, testhelpers.SetupSQLiteDB(t)))
}

func TestCatalogPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	runCatalogScenario(t, startServer(t, testhelpers.SetupPostgresDB(t)))
}
