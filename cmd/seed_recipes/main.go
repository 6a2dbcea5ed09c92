package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/app"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
)

func main() {
	count := flag.Int("n", 25, "Number of recipes to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	perRecipe := flag.Int("ingredients", 4, "Ingredients per recipe")
	flag.Parse()

	a, err := app.New(true)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	factory := testhelpers.NewRecipeFactory(*seed)
	created := 0
	for i := 0; i < *count; i++ {
		names := make([]string, *perRecipe)
		req := factory.Recipe(names...)

		recipe, err := a.Service.CreateRecipe(ctx, req)
		if err != nil {
			a.Logger.Warn("Failed to create recipe", zap.String("name", req.Name), zap.Error(err))
			continue
		}
		created++
		a.Logger.Info("Created recipe",
			zap.Uint("id", recipe.ID),
			zap.String("name", recipe.Name),
			zap.Int("ingredients", len(recipe.Ingredients)),
		)
	}

	a.Logger.Info("Seeding complete", zap.Int("created", created), zap.Int("requested", *count))
}
