package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Provider: ProviderConfig{
			EmbeddingModel: "text-embedding-3-small",
			ChatModel:      "gpt-4o-mini",
		},
		Processing: ProcessingConfig{
			ChunkSize:    1500,
			ChunkOverlap: 200,
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingModels(t *testing.T) {
	cfg := validConfig()
	cfg.Provider.EmbeddingModel = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}

	cfg = validConfig()
	cfg.Provider.ChatModel = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing chat model")
	}
}

func TestValidate_OverlapExceedsChunkSize(t *testing.T) {
	cfg := validConfig()
	cfg.Processing.ChunkSize = 100
	cfg.Processing.ChunkOverlap = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Processing.ChunkSize != 1500 {
		t.Errorf("expected ChunkSize=1500, got %d", cfg.Processing.ChunkSize)
	}
	if cfg.Processing.ChunkOverlap != 200 {
		t.Errorf("expected ChunkOverlap=200, got %d", cfg.Processing.ChunkOverlap)
	}
	if cfg.Processing.EmbedDelayMS != 100 {
		t.Errorf("expected EmbedDelayMS=100, got %d", cfg.Processing.EmbedDelayMS)
	}
	if cfg.Processing.EmbedMaxChars != 2048 {
		t.Errorf("expected EmbedMaxChars=2048, got %d", cfg.Processing.EmbedMaxChars)
	}
	if cfg.Processing.PromptMaxChars != 4000 {
		t.Errorf("expected PromptMaxChars=4000, got %d", cfg.Processing.PromptMaxChars)
	}
	if cfg.Provider.Dimensions != 768 {
		t.Errorf("expected Dimensions=768, got %d", cfg.Provider.Dimensions)
	}
	if cfg.Search.SemanticWeight != 0.7 {
		t.Errorf("expected SemanticWeight=0.7, got %f", cfg.Search.SemanticWeight)
	}
	if cfg.Search.SnippetLength != 300 {
		t.Errorf("expected SnippetLength=300, got %d", cfg.Search.SnippetLength)
	}
	if cfg.Storage.KeyPrefix != "docdex:" {
		t.Errorf("expected KeyPrefix=docdex:, got %q", cfg.Storage.KeyPrefix)
	}
	if len(cfg.Categories) == 0 {
		t.Error("expected default categories to be applied")
	}
	if cfg.Categories[len(cfg.Categories)-1] != "Uncategorized" {
		t.Errorf("expected Uncategorized sentinel last, got %q", cfg.Categories[len(cfg.Categories)-1])
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCDEX_TEST_KEY", "secret")

	out := expandEnvVars([]byte("api_key: ${DOCDEX_TEST_KEY}\nport: ${DOCDEX_TEST_PORT:-8080}"))
	expected := "api_key: secret\nport: 8080"
	if string(out) != expected {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, expected)
	}
}
