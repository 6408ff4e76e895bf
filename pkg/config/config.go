package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	Tools     ToolsConfig     `koanf:"tools"`
	Audit     AuditConfig     `koanf:"audit"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider    string  `koanf:"provider"` // openai, ollama, none
	Model       string  `koanf:"model"`
	BaseURL     string  `koanf:"base_url"`
	APIKey      string  `koanf:"api_key"`
	Temperature float64 `koanf:"temperature"`
}

// ToolsConfig names the HTTP endpoint behind each capability. An empty
// endpoint disables that capability's execution, not its planning.
type ToolsConfig struct {
	SemanticQueryURL string `koanf:"semantic_query_url"`
	GeoExportURL     string `koanf:"geo_export_url"`
	ParityCheckURL   string `koanf:"parity_check_url"`
	AutoSyncURL      string `koanf:"auto_sync_url"`
	CatalogQAURL     string `koanf:"catalog_qa_url"`
	TimeoutSeconds   int    `koanf:"timeout_seconds"`
}

type AuditConfig struct {
	Backend string `koanf:"backend"` // sqlite, memory
	Path    string `koanf:"path"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// Global k instance
var k = koanf.New(".")

func Load(path string) (*Config, error) {
	// Defaults
	k.Set("server.addr", ":8080")
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("llm.provider", "ollama")
	k.Set("llm.model", "qwen2.5-coder:7b-instruct-q5_K_M")
	k.Set("llm.base_url", "http://localhost:11434")
	k.Set("llm.temperature", 0.1)

	k.Set("tools.semantic_query_url", "http://localhost:9001/query")
	k.Set("tools.geo_export_url", "http://localhost:9001/geo")
	k.Set("tools.parity_check_url", "http://localhost:9001/parity")
	k.Set("tools.auto_sync_url", "http://localhost:9001/sync")
	k.Set("tools.catalog_qa_url", "http://localhost:9001/catalog")
	k.Set("tools.timeout_seconds", 60)

	k.Set("audit.backend", "sqlite")
	k.Set("audit.path", "suqi_audit.db")

	k.Set("telemetry.exporter", "stdout")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (SUQI_LLM_PROVIDER -> llm.provider)
	if err := k.Load(env.Provider("SUQI_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "SUQI_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
