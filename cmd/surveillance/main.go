package main

import (
	"log"

	"github.com/joho/godotenv"

	"surveillance/internal/app"
	"surveillance/internal/config"
)

func main() {
	// Optional .env file; plain environment variables work without it.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	application, err := app.New(config.Load())
	if err != nil {
		log.Fatalf("Failed to start surveillance: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Surveillance stopped: %v", err)
	}
}
