package generator

import (
	"context"
	"fmt"
	"log"
	"sync"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/tiendachat/backend/internal/domain"
)

// The in-process model server (llama.cpp or similar) exposes the OpenAI
// API locally; the handle to it is a process-wide singleton, built once
// and reused so the server-side model stays loaded between requests.
var (
	localOnce   sync.Once
	localClient openai.Client
)

func sharedLocalClient(baseURL string) openai.Client {
	localOnce.Do(func() {
		log.Printf("[generator] initializing local model client at %s", baseURL)
		// Local servers ignore the key but the SDK requires one.
		localClient = openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey("local"),
		)
	})
	return localClient
}

// LocalClient drives a locally served model through the OpenAI SDK.
type LocalClient struct {
	client openai.Client
	model  string
	debug  bool
}

// NewLocalClient creates a client bound to the shared local handle
func NewLocalClient(baseURL, model string) *LocalClient {
	return &LocalClient{
		client: sharedLocalClient(baseURL),
		model:  model,
	}
}

// SetDebug enables request logging
func (c *LocalClient) SetDebug(debug bool) {
	c.debug = debug
}

// Generate sends the prompt to the local model and returns the raw
// completion text.
func (c *LocalClient) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	if c.debug {
		log.Printf("[generator] local completion model=%s max_tokens=%d temp=%.1f",
			c.model, opts.MaxTokens, opts.Temperature)
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.model),
		MaxTokens:   openai.Int(int64(opts.MaxTokens)),
		Temperature: openai.Float(opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneratorFailure, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGeneratorFailure)
	}

	return completion.Choices[0].Message.Content, nil
}
