package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tiendachat/backend/internal/domain"
	"github.com/tiendachat/backend/internal/usecase"
)

// Caller-facing messages. The quota message carries the remediation
// hint instead of a generic failure.
const (
	catalogUnavailableDetail = "No se pudo cargar el catálogo de productos"
	quotaExceededDetail      = "Se agotó la cuota del proveedor de generación. " +
		"Configura otro modelo o proveedor (TIENDACHAT_GENERATOR_MODEL / TIENDACHAT_GENERATOR_BASE_URL) e inténtalo de nuevo."
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	chatService *usecase.ChatService
}

// NewHandler creates a new HTTP handler
func NewHandler(chatService *usecase.ChatService) *Handler {
	return &Handler{chatService: chatService}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tiendachat-backend",
		"version": "1.0.0",
	})
}

// Chat answers a customer question against the product catalog
func (h *Handler) Chat(c *gin.Context) {
	if h.chatService == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Chat service not configured",
		})
		return
	}

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "content is required",
		})
		return
	}

	log.Printf("[chat] received message: %q", messagePrefix(req.Content))

	reply, err := h.chatService.Answer(c.Request.Context(), req.Content)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.ChatResponse{Response: reply})
}

// handleChatError maps pipeline errors to HTTP statuses.
func (h *Handler) handleChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
	case errors.Is(err, domain.ErrQuotaExceeded):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": quotaExceededDetail})
	case errors.Is(err, domain.ErrCatalogUnavailable):
		log.Printf("[chat] catalog unavailable: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": catalogUnavailableDetail})
	default:
		log.Printf("[chat] unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// messagePrefix bounds a message for log lines.
func messagePrefix(content string) string {
	const maxRunes = 120
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= maxRunes {
		return string(runes)
	}
	return string(runes[:maxRunes]) + "..."
}
