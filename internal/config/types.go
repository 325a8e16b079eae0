package config

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level orato configuration, corresponding to .orato.yml.
type Config struct {
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	OllamaURL         string       `yaml:"ollama_url" koanf:"ollama_url"`
	Collection        string       `yaml:"collection" koanf:"collection"`
	DataDir           string       `yaml:"data_dir" koanf:"data_dir"`
	Chunk             ChunkConfig  `yaml:"chunk" koanf:"chunk"`
	Ingest            IngestConfig `yaml:"ingest" koanf:"ingest"`
	Search            SearchConfig `yaml:"search" koanf:"search"`
	Server            ServerConfig `yaml:"server" koanf:"server"`
}

// ChunkConfig controls how assembled documents are split before embedding.
type ChunkConfig struct {
	Size    int `yaml:"size" koanf:"size"`
	Overlap int `yaml:"overlap" koanf:"overlap"`
}

// IngestConfig controls the ingestion pipeline.
type IngestConfig struct {
	// IncludeTables routes table objects through the text document path.
	// Off by default: tables are extracted but considered non-searchable.
	IncludeTables  bool `yaml:"include_tables" koanf:"include_tables"`
	MaxConcurrency int  `yaml:"max_concurrency" koanf:"max_concurrency"`
	EmbedRetries   int  `yaml:"embed_retries" koanf:"embed_retries"`
}

// SearchConfig controls retrieval.
type SearchConfig struct {
	TopK int `yaml:"top_k" koanf:"top_k"`
}

// ServerConfig holds the HTTP/websocket surface settings.
type ServerConfig struct {
	Port            int   `yaml:"port" koanf:"port"`
	AllowAllOrigins bool  `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	MaxUploadBytes  int64 `yaml:"max_upload_bytes" koanf:"max_upload_bytes"`
}

// DefaultConfig returns the configuration used when no file or overrides
// are present.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		Collection:        "ppt_assistant",
		DataDir:           "data",
		Chunk: ChunkConfig{
			Size:    300,
			Overlap: 50,
		},
		Ingest: IngestConfig{
			IncludeTables:  false,
			MaxConcurrency: 4,
			EmbedRetries:   3,
		},
		Search: SearchConfig{
			TopK: 5,
		},
		Server: ServerConfig{
			Port:           8000,
			MaxUploadBytes: 64 << 20,
		},
	}
}
