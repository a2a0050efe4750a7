package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/sitelist/internal/app"
)

func main() {
	// A missing .env is fine, the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("⚠️  could not load .env: %v", err)
	}

	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ sitelist failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ sitelist stopped with error: %v", err)
	}
}
