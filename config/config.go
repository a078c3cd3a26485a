package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Generator GeneratorConfig
	Chat      ChatConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig selects where the product catalog is read from
type CatalogConfig struct {
	Type string `mapstructure:"type"` // "file" or "sqlite"
	Path string `mapstructure:"path"`
	DSN  string `mapstructure:"dsn"`
}

// GeneratorConfig holds text-generator configuration
type GeneratorConfig struct {
	Mode         string `mapstructure:"mode"` // "remote" or "local"
	BaseURL      string `mapstructure:"base_url"`
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	LocalBaseURL string `mapstructure:"local_base_url"`
}

// ChatConfig holds pipeline tuning flags
type ChatConfig struct {
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/tiendachat/")

	// Environment variable settings
	v.SetEnvPrefix("TIENDACHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost:5173", "http://127.0.0.1:5173",
		"http://localhost:3000", "http://127.0.0.1:3000",
	})

	// Catalog defaults
	v.SetDefault("catalog.type", "file")
	v.SetDefault("catalog.path", "products.json")
	v.SetDefault("catalog.dsn", "")

	// Generator defaults
	v.SetDefault("generator.mode", "remote")
	v.SetDefault("generator.base_url", "https://router.huggingface.co/v1")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.model", "Qwen/Qwen2.5-1.5B-Instruct")
	v.SetDefault("generator.local_base_url", "http://localhost:8081/v1")

	// Chat defaults
	v.SetDefault("chat.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.Type != "file" && config.Catalog.Type != "sqlite" {
		return fmt.Errorf("catalog type must be 'file' or 'sqlite', got: %s", config.Catalog.Type)
	}
	if config.Catalog.Type == "file" && config.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required when catalog type is 'file'")
	}
	if config.Catalog.Type == "sqlite" && config.Catalog.DSN == "" {
		return fmt.Errorf("catalog DSN is required when catalog type is 'sqlite'")
	}

	if config.Generator.Mode != "remote" && config.Generator.Mode != "local" {
		return fmt.Errorf("generator mode must be 'remote' or 'local', got: %s", config.Generator.Mode)
	}
	if config.Generator.Mode == "remote" && config.Generator.APIKey == "" {
		return fmt.Errorf("generator API key is required (set TIENDACHAT_GENERATOR_API_KEY)")
	}

	return nil
}
