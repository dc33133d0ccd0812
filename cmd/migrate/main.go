package main

import (
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/rithick-11/food-recommendation-system/internal/config"
	"github.com/rithick-11/food-recommendation-system/internal/dbmigrate"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: go run ./cmd/migrate [up|status|down]")
	}

	command := os.Args[1]
	if !dbmigrate.ValidCommand(command) {
		log.Fatalf("unsupported command %q (allowed: up, status, down)", command)
	}

	dbURL := config.DatabaseURL()
	log.Printf("migrate: command=%s", command)

	if err := dbmigrate.Run(command, dbURL); err != nil {
		log.Fatal(err)
	}

	log.Printf("migrate: %s completed successfully", command)
}
