package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/mentis"
	"github.com/siherrmann/mentis/helper"
)

// Needs Docker for the throwaway Postgres container and a local Ollama
// server for extraction and answers.
const sampleEntry = `Today was my birthday and it turned out better than I expected.

Mom surprised me in the morning with a blue bicycle, the exact one I had been
looking at in the shop window for weeks. I was so happy I almost cried.

In the afternoon Anna came over and we rode to the lake together. We talked
about school and about the summer. I want to learn to swim properly before
the holidays end.`

func main() {
	// Start a pgvector Postgres container as the demo store
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		User:     "postgres",
		Password: "postgres",
		DBName:   "mentis_test",
		SSLMode:  "disable",
	}

	// Ollama so the demo needs no API key, everything else defaults
	appConfig := &helper.AppConfig{
		UserID: "demo",
		LLM: helper.LLMConfig{
			Provider: "ollama",
		},
		Embedding: helper.EmbeddingConfig{
			ModelName: "sentence-transformers/all-MiniLM-L6-v2",
			ModelDir:  "./models",
			Dimension: 384,
		},
	}

	m, err := mentis.NewMentis(dbConfig, appConfig)
	if err != nil {
		log.Fatalf("Failed to create mentis: %v", err)
	}
	defer m.Close()

	ctx := context.Background()

	fmt.Println("Ingesting entry...")
	stats, err := m.IngestEntry(ctx, "entry_birthday", sampleEntry)
	if err != nil {
		log.Fatalf("Failed to ingest entry: %v", err)
	}
	fmt.Printf("Inserted %d chunks and %d connections\n", stats.Chunks, stats.Connections)

	question := "What gifts did I receive for my birthday?"
	fmt.Printf("\nAsking: %s\n", question)

	output, err := m.Retrieve(ctx, question)
	if err != nil {
		log.Fatalf("Failed to retrieve: %v", err)
	}
	fmt.Println("Rewritten queries:")
	for _, query := range output.QueriesUsed {
		fmt.Printf("  '%s' (%s)\n", query.Query, query.Category)
	}
	fmt.Printf("Retrieved %d results\n", output.Results.Len())

	answer, err := m.Chat(ctx, question)
	if err != nil {
		log.Fatalf("Failed to chat: %v", err)
	}
	fmt.Printf("\n%s\n", answer)

	fmt.Println("\nBasic example completed successfully!")
}
