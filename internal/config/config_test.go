package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 8080},
		Redis:  RedisConfig{Addrs: []string{"localhost:6379"}},
		OpenAI: OpenAIConfig{APIKey: "test-key"},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing openai api key")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Catalog.Path != "storefront.db" {
		t.Errorf("expected Catalog.Path='storefront.db', got %q", cfg.Catalog.Path)
	}
	if cfg.Redis.KeyPrefix != "storefront:" {
		t.Errorf("expected KeyPrefix='storefront:', got %q", cfg.Redis.KeyPrefix)
	}
	if cfg.OpenAI.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %q", cfg.OpenAI.EmbeddingModel)
	}
	if cfg.OpenAI.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.OpenAI.Dimensions)
	}
	if cfg.Chat.MaxProductItems != 7 {
		t.Errorf("expected MaxProductItems=7, got %d", cfg.Chat.MaxProductItems)
	}
	if cfg.Chat.MaxKnowledgeItems != 5 {
		t.Errorf("expected MaxKnowledgeItems=5, got %d", cfg.Chat.MaxKnowledgeItems)
	}
	if cfg.Chat.CacheTTLSec != 300 {
		t.Errorf("expected CacheTTLSec=300, got %d", cfg.Chat.CacheTTLSec)
	}
}

func TestApplyDefaults_QueryModelFollowsChatModel(t *testing.T) {
	cfg := Config{OpenAI: OpenAIConfig{ChatModel: "gpt-4o"}}
	cfg.ApplyDefaults()

	if cfg.OpenAI.QueryModel != "gpt-4o" {
		t.Errorf("expected QueryModel to default to ChatModel, got %q", cfg.OpenAI.QueryModel)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Catalog: CatalogConfig{Path: "/data/shop.db"},
		Redis:   RedisConfig{KeyPrefix: "custom:", ReadinessTimeout: 15},
		Chat:    ChatConfig{MaxProductItems: 10, CacheTTLSec: 60},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Catalog.Path != "/data/shop.db" {
		t.Errorf("expected Catalog.Path preserved, got %q", cfg.Catalog.Path)
	}
	if cfg.Redis.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Redis.KeyPrefix)
	}
	if cfg.Chat.MaxProductItems != 10 {
		t.Errorf("expected MaxProductItems=10, got %d", cfg.Chat.MaxProductItems)
	}
	if cfg.Chat.CacheTTLSec != 60 {
		t.Errorf("expected CacheTTLSec=60, got %d", cfg.Chat.CacheTTLSec)
	}
}
