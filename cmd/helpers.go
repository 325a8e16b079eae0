package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oratohq/orato/internal/config"
	"github.com/oratohq/orato/internal/embeddings"
	"github.com/oratohq/orato/internal/ingest"
	"github.com/oratohq/orato/internal/registry"
	"github.com/oratohq/orato/internal/retriever"
	"github.com/oratohq/orato/internal/vectordb"
)

// loadConfig loads and validates the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// createEmbedder builds the configured embedder, wrapped with bounded
// retries.
func createEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	var inner embeddings.Embedder
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		inner = embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel))
	case config.ProviderOllama:
		inner = embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 0, cfg.OllamaURL)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}

	return embeddings.WithRetry(inner, cfg.Ingest.EmbedRetries, 500*time.Millisecond), nil
}

// openStore opens the configured vector collection and loads any persisted
// state. A collection that has never been persisted loads empty.
func openStore(cfg *config.Config, embedder embeddings.Embedder) (vectordb.Store, error) {
	store, err := vectordb.NewChromemStore(cfg.Collection, cfg.DataDir, embedder)
	if err != nil {
		return nil, err
	}
	if err := store.Load(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// buildPipeline assembles the full ingestion pipeline from config.
func buildPipeline(cfg *config.Config, embedder embeddings.Embedder, store vectordb.Store) *ingest.Pipeline {
	return ingest.NewPipeline(
		embedder,
		store,
		ingest.Assembler{IncludeTables: cfg.Ingest.IncludeTables},
		ingest.NewChunker(cfg.Chunk.Size, cfg.Chunk.Overlap),
	)
}

// buildRetriever assembles the retrieval pipeline from config.
func buildRetriever(cfg *config.Config, embedder embeddings.Embedder, store vectordb.Store) *retriever.Retriever {
	return retriever.New(embedder, store, cfg.Search.TopK)
}

// openRegistry opens the document registry next to the vector data.
func openRegistry(cfg *config.Config) (*registry.Registry, error) {
	return registry.Open(filepath.Join(cfg.DataDir, "registry.db"))
}
