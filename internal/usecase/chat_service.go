package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tiendachat/backend/internal/domain"
)

// ChatServiceConfig holds configuration for the chat service
type ChatServiceConfig struct {
	EnableDebugLogging bool
}

// ChatService runs the full question-to-reply pipeline: load the
// catalog, classify the intent, route the catalog search, compose and
// validate the reply. Classification and generation are sequential
// blocking generator calls; everything in between is pure, so the
// service is safe for concurrent requests.
type ChatService struct {
	loader     domain.CatalogLoader
	classifier *IntentClassifier
	router     *CatalogSearchRouter
	composer   *ResponseComposer
}

// NewChatService wires the pipeline around one catalog loader and one
// generator. Both generator calls of a request go through the same
// generator instance.
func NewChatService(loader domain.CatalogLoader, generator domain.Generator, config ChatServiceConfig) *ChatService {
	ranker := NewRelevanceRanker(config.EnableDebugLogging)

	return &ChatService{
		loader:     loader,
		classifier: NewIntentClassifier(generator, config.EnableDebugLogging),
		router:     NewCatalogSearchRouter(ranker, config.EnableDebugLogging),
		composer:   NewResponseComposer(generator, config.EnableDebugLogging),
	}
}

// Answer produces the reply for one customer question. The only
// unrecoverable failures are an unusable catalog and provider quota
// exhaustion; every generator mishap downstream of those resolves to a
// deterministic reply.
func (s *ChatService) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", domain.ErrInvalidRequest
	}

	catalog, err := s.loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	if len(catalog) == 0 {
		return "", domain.ErrCatalogUnavailable
	}

	intent := s.classifier.Classify(ctx, question)
	routed := s.router.Search(intent, question, catalog)

	log.Printf("[chat] tipo=%q routed=%d products for %q", intent.Type, len(routed), questionPrefix(question))

	return s.composer.Compose(ctx, intent, question, routed, catalog)
}
