// Command models lists the Gemini models that support embedContent, to
// help pick a value for EMBED_MODEL.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		log.Fatalf("create client: %v", err)
	}
	defer client.Close()

	iter := client.ListModels(ctx)
	for {
		m, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Fatalf("list models: %v", err)
		}
		if !slices.Contains(m.SupportedGenerationMethods, "embedContent") {
			continue
		}
		fmt.Printf("%s\t%s\n", m.Name, m.Description)
	}
}
