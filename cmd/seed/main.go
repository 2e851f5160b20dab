// Package main provides a tool to (re)seed the prompt suggestion catalog.
//
// The server seeds the catalog on startup, so this is only needed to force a
// rebuild after hand-editing the database or to prepare a data directory
// ahead of the first run.
//
// Usage:
//
//	DB_PATH=~/Storybook/data/stories.db go run ./cmd/seed
//	DB_PATH=~/Storybook/data/stories.db go run ./cmd/seed --force  # Reassign all suggestion IDs
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/storybookapp/storybook-server/internal/store"
)

var force = flag.Bool("force", false, "Rebuild the catalog even if the seed version matches")

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Storybook/data/stories.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NoopFetcher{})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if *force {
		err = s.ReseedPrompts(ctx)
	} else {
		err = s.SeedPrompts(ctx)
	}
	if err != nil {
		log.Fatalf("Failed to seed prompts: %v", err)
	}

	count, err := s.CountPrompts(ctx)
	if err != nil {
		log.Fatalf("Failed to count prompts: %v", err)
	}

	fmt.Printf("Prompt catalog ready: %d suggestions\n", count)
}
