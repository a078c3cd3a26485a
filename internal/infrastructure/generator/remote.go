package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tiendachat/backend/internal/domain"
)

// thinkBlockRegex strips reasoning blocks some hosted models wrap
// around their answer.
var thinkBlockRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// remoteSystemPrompt frames every remote call. The per-call prompt
// built by the pipeline carries the actual grounding rules.
const remoteSystemPrompt = "Eres un asistente de ventas de una tienda en línea. " +
	"IMPORTANTE: Siempre responde en español, sin importar el idioma de la pregunta. " +
	"Sé amable, profesional y conciso."

// RemoteClient calls an OpenAI-compatible chat-completions endpoint
// (Hugging Face router, OpenAI, or any proxy speaking the same API).
type RemoteClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewRemoteClient creates a client for the given provider
func NewRemoteClient(baseURL, apiKey, model string) *RemoteClient {
	// Hosted inference routers throttle aggressively; 2 req/s with a
	// small burst keeps one chat request (two calls) well inside limits.
	limiter := rate.NewLimiter(rate.Limit(2), 4)

	return &RemoteClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		rateLimiter: limiter,
	}
}

// SetDebug enables request/response logging
func (c *RemoteClient) SetDebug(debug bool) {
	c.debug = debug
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt as a user message and returns the raw
// completion text. HTTP 402 maps to domain.ErrQuotaExceeded so the
// caller can surface the distinct remediation message; every other
// failure maps to domain.ErrGeneratorFailure.
func (c *RemoteClient) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", domain.ErrGeneratorFailure, err)
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: remoteSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrGeneratorFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: new request: %v", domain.ErrGeneratorFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	if c.debug {
		log.Printf("[generator] POST %s/chat/completions model=%s max_tokens=%d temp=%.1f",
			c.baseURL, c.model, opts.MaxTokens, opts.Temperature)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneratorFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired {
		return "", fmt.Errorf("%w: provider returned status 402", domain.ErrQuotaExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrGeneratorFailure,
			resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrGeneratorFailure, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGeneratorFailure)
	}

	text := thinkBlockRegex.ReplaceAllString(completion.Choices[0].Message.Content, "")

	if c.debug {
		log.Printf("[generator] received %d chars", len(text))
	}

	return strings.TrimSpace(text), nil
}
