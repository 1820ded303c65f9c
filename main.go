package main

import (
	"log"

	"github.com/joho/godotenv"

	"universebot/internal/app"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	if err := app.Run(); err != nil {
		log.Fatalf("bot exited: %v", err)
	}
}
