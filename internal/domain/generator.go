package domain

import "context"

// GenerationOptions bound a single generator call.
type GenerationOptions struct {
	MaxTokens   int
	Temperature float64
}

// Generator is the external text-generation capability. Implementations
// own model selection, credentials, timeouts and retries; callers own
// prompt construction and output parsing. Generated text is untrusted
// and may be anything, including garbage.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

// CatalogLoader supplies the ordered product list for a request. The
// catalog is reloaded fresh on every call and treated read-only.
type CatalogLoader interface {
	Load(ctx context.Context) ([]Product, error)
}
