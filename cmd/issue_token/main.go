package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
)

func main() {
	client := flag.String("client", "", "Client identifier placed in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *client == "" {
		log.Fatal("-client is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.AuthEnabled() {
		log.Fatal("jwt secret is not configured, set RECIPES_AUTH_JWT_SECRET")
	}

	token, err := middleware.NewJWTValidator(cfg.JWTSecret, middleware.TokenIssuer).SignToken(*client, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
