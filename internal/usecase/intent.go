package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tiendachat/backend/internal/domain"
)

// Sampling bounds for classification calls. Low temperature keeps the
// tag assignment close to deterministic.
const (
	classifyMaxTokens   = 100
	classifyTemperature = 0.3
)

// classificationInstructions is the fixed few-shot prompt: the four
// catalog categories with example product types, the five intent tags,
// and six worked examples mapping a question to the expected JSON.
const classificationInstructions = `Eres un clasificador de preguntas. Analiza la pregunta del usuario y responde SOLO con un JSON.

CATEGORÍAS DISPONIBLES Y SUS PRODUCTOS:
- ropa: camisetas, pantalones, vestidos, sudaderas, blusas, faldas, camperas
- calzado: zapatillas, zapatos, botines, sandalias, botas, tenis, mocasines
- electrónica: laptops, tablets, relojes inteligentes, auriculares, monitores, mouse, bocinas, cámaras
- accesorios: mochilas, gafas, gorras, cinturones, riñoneras, bufandas, carteras, sombreros

TIPOS DE PREGUNTA:
- 'categorias_disponibles': pregunta QUÉ categorías existen
- 'categoria': pide VER productos de UNA categoría
- 'producto_especifico': pregunta por UN producto en particular
- 'general': pregunta general sobre el catálogo
- 'fuera_catalogo': NO es sobre productos

Responde SOLO JSON: {"tipo": "...", "terminos": [...], "categoria": "..."}

EJEMPLOS:
'Qué categorías tienes?' -> {"tipo": "categorias_disponibles", "terminos": [], "categoria": null}
'Muéstrame electrónica' -> {"tipo": "categoria", "terminos": ["electronica"], "categoria": "electrónica"}
'Mochila para Portátil' -> {"tipo": "producto_especifico", "terminos": ["mochila", "portatil"], "categoria": "accesorios"}
'Tienes camisetas?' -> {"tipo": "categoria", "terminos": ["camiseta"], "categoria": "ropa"}
'Laptop 14' -> {"tipo": "producto_especifico", "terminos": ["laptop", "14"], "categoria": "electrónica"}
'Zapatos' -> {"tipo": "categoria", "terminos": ["zapatos"], "categoria": "calzado"}`

// IntentClassifier tags a question with a structured intent by asking
// the generator. The generator output is untrusted: any failure along
// the way yields the default general intent instead of an error.
type IntentClassifier struct {
	generator          domain.Generator
	enableDebugLogging bool
}

// NewIntentClassifier creates a new intent classifier
func NewIntentClassifier(generator domain.Generator, enableDebugLogging bool) *IntentClassifier {
	return &IntentClassifier{
		generator:          generator,
		enableDebugLogging: enableDebugLogging,
	}
}

// Classify returns the intent of a question. It never fails: on any
// generator error or unparseable output it logs and substitutes
// DefaultIntent, so downstream code always sees the three fields set.
func (c *IntentClassifier) Classify(ctx context.Context, question string) domain.Intent {
	prompt := buildClassificationPrompt(question)

	raw, err := c.generator.Generate(ctx, prompt, domain.GenerationOptions{
		MaxTokens:   classifyMaxTokens,
		Temperature: classifyTemperature,
	})
	if err != nil {
		log.Printf("[intent] classification failed for %q: %v, using default", questionPrefix(question), err)
		return domain.DefaultIntent()
	}

	intent, ok := parseIntent(raw)
	if !ok {
		log.Printf("[intent] no JSON object in model output for %q, using default", questionPrefix(question))
		return domain.DefaultIntent()
	}

	if c.enableDebugLogging {
		log.Printf("[intent] classified as tipo=%q terms=%v category=%q", intent.Type, intent.Terms, intent.Category)
	}

	return intent
}

func buildClassificationPrompt(question string) string {
	return fmt.Sprintf("%s\n\nPregunta: %s", classificationInstructions, question)
}

// parseIntent extracts the first-{ to last-} span of the cleaned output
// and decodes it. Returns false on missing braces or malformed JSON.
func parseIntent(raw string) (domain.Intent, bool) {
	text := stripRoleMarkers(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return domain.Intent{}, false
	}

	var intent domain.Intent
	if err := json.Unmarshal([]byte(text[start:end+1]), &intent); err != nil {
		return domain.Intent{}, false
	}

	// Guarantee the well-formedness contract even when the model leaves
	// fields out. Unknown tags pass through; the router treats them as
	// general.
	if intent.Type == "" {
		intent.Type = domain.IntentGeneral
	}
	if intent.Terms == nil {
		intent.Terms = []string{}
	}

	return intent, true
}

// stripRoleMarkers removes chat-template turn delimiters that small
// models tend to echo around their answer.
func stripRoleMarkers(s string) string {
	if idx := strings.LastIndex(s, "<|im_start|>assistant"); idx != -1 {
		s = s[idx+len("<|im_start|>assistant"):]
	}
	s = strings.ReplaceAll(s, "<|im_end|>", "")
	s = strings.ReplaceAll(s, "<|im_start|>", "")
	return strings.TrimSpace(s)
}

// questionPrefix bounds a question for log lines.
func questionPrefix(question string) string {
	const maxRunes = 120
	runes := []rune(strings.TrimSpace(question))
	if len(runes) <= maxRunes {
		return string(runes)
	}
	return string(runes[:maxRunes]) + "..."
}
