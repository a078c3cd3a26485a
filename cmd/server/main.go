package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/tiendachat/backend/config"
	httpDelivery "github.com/tiendachat/backend/internal/delivery/http"
	"github.com/tiendachat/backend/internal/domain"
	"github.com/tiendachat/backend/internal/infrastructure/catalog"
	"github.com/tiendachat/backend/internal/infrastructure/generator"
	"github.com/tiendachat/backend/internal/usecase"
)

func main() {
	// Local development reads secrets from .env; missing file is fine
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting TiendaChat Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Catalog: %s", cfg.Catalog.Type)
	log.Printf("Generator: %s", cfg.Generator.Mode)

	debug := cfg.Chat.EnableDebugLogging || cfg.Server.Environment == "development"

	// Catalog loader
	loader, closeCatalog, err := buildCatalogLoader(cfg)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	if closeCatalog != nil {
		defer closeCatalog()
	}

	// Text generator
	gen := buildGenerator(cfg, debug)

	// Chat pipeline
	chatService := usecase.NewChatService(loader, gen, usecase.ChatServiceConfig{
		EnableDebugLogging: debug,
	})

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(chatService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func buildCatalogLoader(cfg *config.Config) (domain.CatalogLoader, func() error, error) {
	switch cfg.Catalog.Type {
	case "sqlite":
		loader, err := catalog.NewSQLiteLoader(cfg.Catalog.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Catalog database: %s", cfg.Catalog.DSN)
		return loader, loader.Close, nil
	default:
		log.Printf("Catalog file: %s", cfg.Catalog.Path)
		return catalog.NewFileLoader(cfg.Catalog.Path), nil, nil
	}
}

func buildGenerator(cfg *config.Config, debug bool) domain.Generator {
	if cfg.Generator.Mode == "local" {
		client := generator.NewLocalClient(cfg.Generator.LocalBaseURL, cfg.Generator.Model)
		client.SetDebug(debug)
		log.Printf("Local model server: %s (model: %s)", cfg.Generator.LocalBaseURL, cfg.Generator.Model)
		return client
	}

	client := generator.NewRemoteClient(cfg.Generator.BaseURL, cfg.Generator.APIKey, cfg.Generator.Model)
	client.SetDebug(debug)
	if len(cfg.Generator.APIKey) > 8 {
		log.Printf("Remote provider: %s (key: %s...)", cfg.Generator.BaseURL, cfg.Generator.APIKey[:6])
	} else {
		log.Printf("Remote provider: %s", cfg.Generator.BaseURL)
	}
	return client
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
