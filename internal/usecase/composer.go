package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tiendachat/backend/internal/domain"
)

// Sampling bounds per response kind. Detail and single-product replies
// get more room and a slightly tighter temperature.
const (
	detailMaxTokens    = 350
	detailTemperature  = 0.6
	listingMaxTokens   = 250
	listingTemperature = 0.7
)

// Validation bounds for generated text.
const (
	minResponseRunes = 10
	maxResponseRunes = 800
)

// Fixed terminal replies. These are the branches that never touch the
// generator at all.
const (
	offCatalogReply = "Hola! Soy tu asistente de ventas. Estoy aquí para ayudarte con información sobre nuestros productos. ¿Qué te gustaría saber?"
	noMatchesReply  = "Lo siento, no encontré productos que coincidan con tu búsqueda. ¿Puedo ayudarte con algo más?"
)

// detailKeywords switch a reply into detail mode when present anywhere
// in the lowercased question.
var detailKeywords = []string{
	"detalles", "detalle", "información", "info", "características",
	"más sobre", "describe", "cuéntame", "stock", "categoría",
	"categoria", "descripción", "descripcion", "disponible",
	"cuántos", "cuantos", "sobre", "del", "de la",
}

// englishMarkers reject a reply only as whole phrases; stray English
// words inside Spanish text are fine.
var englishMarkers = []string{
	"yes we have", "sure we have", "we can help",
	"our store", "available in", "here are the",
}

// spanishMarkers rescue a reply that tripped an English marker.
var spanishMarkers = []string{
	"¡", "¿", "á", "é", "í", "ó", "ú", "ñ",
	"tenemos", "productos", "precio", "disponible",
}

// ResponseComposer builds the grounding prompt for the routed products,
// invokes the generator, validates the output, and falls back to a
// deterministic product listing whenever the generator path fails.
// Only quota exhaustion surfaces as an error; everything else has a
// fallback.
type ResponseComposer struct {
	generator          domain.Generator
	enableDebugLogging bool
}

// NewResponseComposer creates a new response composer
func NewResponseComposer(generator domain.Generator, enableDebugLogging bool) *ResponseComposer {
	return &ResponseComposer{
		generator:          generator,
		enableDebugLogging: enableDebugLogging,
	}
}

// Compose produces the final reply text for a routed request. The full
// catalog is only consulted for the available-categories enumeration;
// every other branch is grounded on the routed products alone.
func (c *ResponseComposer) Compose(ctx context.Context, intent domain.Intent, question string, routed, catalog []domain.Product) (string, error) {
	switch intent.Type {
	case domain.IntentAvailableCategories:
		return categoriesReply(catalog), nil
	case domain.IntentOffCatalog:
		return offCatalogReply, nil
	}

	if len(routed) == 0 {
		return noMatchesReply, nil
	}

	detailMode := asksForDetails(question)

	var specific *domain.Product
	if intent.Type == domain.IntentSpecificProduct && len(routed) == 1 {
		specific = &routed[0]
		detailMode = true
		if c.enableDebugLogging {
			log.Printf("[compose] specific product resolved: %s", specific.Name)
		}
	}

	prompt := buildGroundingPrompt(intent, question, routed, specific, detailMode)

	opts := domain.GenerationOptions{MaxTokens: listingMaxTokens, Temperature: listingTemperature}
	if detailMode {
		opts = domain.GenerationOptions{MaxTokens: detailMaxTokens, Temperature: detailTemperature}
	}

	raw, err := c.generator.Generate(ctx, prompt, opts)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			return "", err
		}
		log.Printf("[compose] generation failed for %q: %v, using deterministic fallback", questionPrefix(question), err)
		return fallbackReply(routed, specific, detailMode), nil
	}

	reply, err := validateGeneration(raw)
	if err != nil {
		log.Printf("[compose] %v for %q, using deterministic fallback", err, questionPrefix(question))
		return fallbackReply(routed, specific, detailMode), nil
	}

	if c.enableDebugLogging {
		log.Printf("[compose] using model reply (%d chars)", utf8.RuneCountInString(reply))
	}

	return reply, nil
}

// asksForDetails reports whether the question contains any of the
// detail-seeking keywords.
func asksForDetails(question string) bool {
	return containsAny(strings.ToLower(question), detailKeywords)
}

// buildGroundingPrompt selects exactly one of four mutually exclusive
// prompts. Each one instructs the generator to use only the supplied
// product excerpt and never invent data.
func buildGroundingPrompt(intent domain.Intent, question string, routed []domain.Product, specific *domain.Product, detailMode bool) string {
	excerpt := productExcerpt(routed, detailMode || specific != nil)

	switch {
	case specific != nil:
		return fmt.Sprintf(
			"Eres un asistente de ventas profesional y amable. Siempre respondes en español.\n"+
				"REGLA IMPORTANTE: Solo puedes mencionar información que esté en el catálogo. NO inventes datos.\n\n"+
				"Información del producto:\n%s\n\n"+
				"El cliente pregunta: %s\n\n"+
				"Por favor, presenta la información del producto %s en formato bullets (•) con doble salto de línea:\n"+
				"• Nombre\n• Precio\n• Categoría\n• Stock disponible\n• Descripción",
			excerpt, question, specific.Name)

	case intent.Type == domain.IntentCategory && intent.Category != "":
		categoryName := capitalize(intent.Category)
		return fmt.Sprintf(
			"Eres un asistente de ventas amable. Siempre respondes en español.\n"+
				"REGLA IMPORTANTE: Solo menciona productos que estén en el catálogo. NO inventes productos ni datos.\n\n"+
				"Productos de la categoría '%s':\n%s\n\n"+
				"Pregunta: %s\n\n"+
				"Por favor, presenta los productos de %s con nombre y precio usando formato bullets (•). Sé amable y menciona cuántos productos hay disponibles.",
			categoryName, excerpt, question, categoryName)

	case detailMode:
		return fmt.Sprintf(
			"Eres un asistente de ventas amable. Siempre respondes en español.\n"+
				"REGLA IMPORTANTE: Solo menciona productos e información que esté en el catálogo. NO inventes datos.\n\n"+
				"Productos disponibles:\n%s\n\n"+
				"Pregunta: %s\n\n"+
				"Por favor, lista los productos con toda su información (nombre, precio, categoría, stock, descripción) usando formato bullets (•).",
			excerpt, question)

	default:
		return fmt.Sprintf(
			"Eres un asistente de ventas amable. Siempre respondes en español.\n"+
				"REGLA IMPORTANTE: Solo menciona productos que estén en el catálogo. NO inventes productos ni datos.\n\n"+
				"Productos disponibles:\n%s\n\n"+
				"Pregunta: %s\n\n"+
				"Por favor, lista los productos relevantes con nombre y precio usando formato bullets (•). Sé breve y amable.",
			excerpt, question)
	}
}

// productExcerpt renders the per-product grounding text: full fields in
// detail mode, name and price otherwise.
func productExcerpt(products []domain.Product, detailed bool) string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		if detailed {
			lines = append(lines, fmt.Sprintf(
				"%s: $%.2f, Categoría: %s, Stock: %d unidades, Descripción: %s",
				p.Name, p.Price, p.Category, p.Stock, p.Description))
		} else {
			lines = append(lines, fmt.Sprintf("%s: $%.2f", p.Name, p.Price))
		}
	}
	return strings.Join(lines, "\n")
}

// validateGeneration cleans and checks raw generator output. Rejects
// text shorter than 10 runes, and text carrying an English marker
// phrase with no Spanish marker to rescue it. Accepted text is capped
// at 800 runes.
func validateGeneration(raw string) (string, error) {
	text := stripRoleMarkers(raw)
	text = strings.TrimSpace(strings.TrimLeft(text, ": "))

	if utf8.RuneCountInString(text) < minResponseRunes {
		return "", fmt.Errorf("%w: too short", domain.ErrInvalidGeneration)
	}

	lower := strings.ToLower(text)
	if containsAny(lower, englishMarkers) && !containsAny(lower, spanishMarkers) {
		return "", fmt.Errorf("%w: reply not in Spanish", domain.ErrInvalidGeneration)
	}

	return truncateRunes(text, maxResponseRunes), nil
}

// fallbackReply is the deterministic backstop: a bullet listing built
// directly from the routed products. It cannot fail.
func fallbackReply(routed []domain.Product, specific *domain.Product, detailMode bool) string {
	products := routed
	if specific != nil {
		products = []domain.Product{*specific}
	}

	blocks := make([]string, 0, len(products))
	for _, p := range products {
		if detailMode {
			blocks = append(blocks, fmt.Sprintf(
				"• %s\n\n• Precio: $%.2f\n\n• Categoría: %s\n\n• Stock disponible: %d unidades\n\n• Descripción: %s",
				p.Name, p.Price, p.Category, p.Stock, p.Description))
		} else {
			blocks = append(blocks, fmt.Sprintf("• %s - $%.2f", p.Name, p.Price))
		}
	}

	separator := "\n"
	if detailMode {
		separator = "\n\n"
	}

	header := "¡Claro! Estos son nuestros productos:"
	if specific != nil {
		header = "¡Claro! Aquí está toda la información:"
	}

	return header + "\n\n" + strings.Join(blocks, separator)
}

// categoriesReply enumerates the distinct categories present in the
// catalog, sorted, one bullet each.
func categoriesReply(catalog []domain.Product) string {
	seen := make(map[string]bool)
	var categories []string
	for _, p := range catalog {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)

	bullets := make([]string, 0, len(categories))
	for _, category := range categories {
		bullets = append(bullets, "• "+capitalize(category))
	}

	return "¡Claro! Tenemos productos en las siguientes categorías:\n\n" +
		strings.Join(bullets, "\n") +
		"\n\n¿Te gustaría ver productos de alguna categoría en particular?"
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// truncateRunes caps s at n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
