package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tiendachat/backend/internal/domain"
)

func TestComposeFixedReplies(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()

	// The generator must never be consulted for these branches.
	composer := NewResponseComposer(failingGenerator(errors.New("generator must not be called")), false)

	t.Run("enumerates distinct categories sorted and capitalized", func(t *testing.T) {
		intent := domain.Intent{Type: domain.IntentAvailableCategories, Terms: []string{}}
		got, err := composer.Compose(ctx, intent, "¿Qué categorías tienes?", nil, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		want := "¡Claro! Tenemos productos en las siguientes categorías:\n\n" +
			"• Accesorios\n• Calzado\n• Electrónica\n• Ropa\n\n" +
			"¿Te gustaría ver productos de alguna categoría en particular?"
		if got != want {
			t.Errorf("Compose() = %q, want %q", got, want)
		}
	})

	t.Run("off-catalog questions get the canned greeting", func(t *testing.T) {
		intent := domain.Intent{Type: domain.IntentOffCatalog, Terms: []string{}}
		got, err := composer.Compose(ctx, intent, "¿Cómo estás?", nil, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if got != offCatalogReply {
			t.Errorf("Compose() = %q, want the off-catalog greeting", got)
		}
	})

	t.Run("no routed products gets the no-matches sentence", func(t *testing.T) {
		intent := domain.Intent{Type: domain.IntentCategory, Terms: []string{"xilofono"}}
		got, err := composer.Compose(ctx, intent, "¿Tienes xilófonos?", nil, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if got != noMatchesReply {
			t.Errorf("Compose() = %q, want the no-matches sentence", got)
		}
	})
}

func TestComposeValidation(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()
	intent := domain.Intent{Type: domain.IntentGeneral, Terms: []string{}}

	t.Run("valid Spanish reply passes through unmodified", func(t *testing.T) {
		composer := NewResponseComposer(staticGenerator("¡Tenemos 3 productos disponibles!"), false)
		got, err := composer.Compose(ctx, intent, "¿Qué vendes?", catalog, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if got != "¡Tenemos 3 productos disponibles!" {
			t.Errorf("Compose() = %q, want the generator reply verbatim", got)
		}
	})

	t.Run("role markers and leading colon are stripped", func(t *testing.T) {
		raw := "<|im_start|>assistant: ¡Tenemos productos en oferta!<|im_end|>"
		composer := NewResponseComposer(staticGenerator(raw), false)
		got, err := composer.Compose(ctx, intent, "¿Qué vendes?", catalog, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if got != "¡Tenemos productos en oferta!" {
			t.Errorf("Compose() = %q, want cleaned reply", got)
		}
	})

	t.Run("English reply without Spanish markers falls back", func(t *testing.T) {
		composer := NewResponseComposer(staticGenerator(
			"Yes we have many available in store, check it out"), false)
		got, err := composer.Compose(ctx, intent, "¿Qué vendes?", catalog, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if !strings.HasPrefix(got, "¡Claro! Estos son nuestros productos:") {
			t.Errorf("Compose() = %q, want deterministic listing fallback", got)
		}
		if !strings.Contains(got, "• Camiseta Básica Blanca - $15.99") {
			t.Errorf("Compose() = %q, want product bullet lines", got)
		}
	})

	t.Run("English marker with a Spanish marker is accepted", func(t *testing.T) {
		reply := "Sí, available in tienda: tenemos camisetas y gorras."
		composer := NewResponseComposer(staticGenerator(reply), false)
		got, err := composer.Compose(ctx, intent, "¿Qué vendes?", catalog, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if got != reply {
			t.Errorf("Compose() = %q, want %q", got, reply)
		}
	})

	t.Run("too-short reply falls back", func(t *testing.T) {
		composer := NewResponseComposer(staticGenerator("Sí."), false)
		got, err := composer.Compose(ctx, intent, "¿Qué vendes?", catalog, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if !strings.HasPrefix(got, "¡Claro! Estos son nuestros productos:") {
			t.Errorf("Compose() = %q, want deterministic fallback", got)
		}
	})

	t.Run("overlong reply is truncated to the rune cap", func(t *testing.T) {
		long := strings.Repeat("¡Tenemos productos! ", 50)
		composer := NewResponseComposer(staticGenerator(long), false)
		got, err := composer.Compose(ctx, intent, "¿Qué vendes?", catalog, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if n := utf8.RuneCountInString(got); n != maxResponseRunes {
			t.Errorf("Compose() returned %d runes, want %d", n, maxResponseRunes)
		}
	})
}

func TestComposeFailureHandling(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()
	intent := domain.Intent{Type: domain.IntentGeneral, Terms: []string{}}

	t.Run("generic generator failure falls back", func(t *testing.T) {
		composer := NewResponseComposer(failingGenerator(domain.ErrGeneratorFailure), false)
		got, err := composer.Compose(ctx, intent, "¿Qué vendes?", catalog, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if !strings.HasPrefix(got, "¡Claro! Estos son nuestros productos:") {
			t.Errorf("Compose() = %q, want deterministic fallback", got)
		}
	})

	t.Run("quota exhaustion propagates", func(t *testing.T) {
		composer := NewResponseComposer(failingGenerator(domain.ErrQuotaExceeded), false)
		got, err := composer.Compose(ctx, intent, "¿Qué vendes?", catalog, catalog)
		if !errors.Is(err, domain.ErrQuotaExceeded) {
			t.Fatalf("Compose() error = %v, want ErrQuotaExceeded", err)
		}
		if got != "" {
			t.Errorf("Compose() = %q, want empty reply on quota error", got)
		}
	})
}

func TestComposeModes(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()

	t.Run("listing questions use listing sampling bounds", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []scriptedResponse{
			{text: "¡Tenemos varios productos para ti!"},
		}}
		composer := NewResponseComposer(gen, false)
		intent := domain.Intent{Type: domain.IntentGeneral, Terms: []string{}}
		if _, err := composer.Compose(ctx, intent, "¿Qué vendes?", catalog, catalog); err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if gen.opts[0].MaxTokens != listingMaxTokens || gen.opts[0].Temperature != listingTemperature {
			t.Errorf("options = %+v, want max_tokens=%d temperature=%v",
				gen.opts[0], listingMaxTokens, listingTemperature)
		}
	})

	t.Run("detail keywords switch sampling and fallback format", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []scriptedResponse{
			{err: domain.ErrGeneratorFailure},
		}}
		composer := NewResponseComposer(gen, false)
		intent := domain.Intent{Type: domain.IntentCategory, Terms: []string{"camiseta"}}
		got, err := composer.Compose(ctx, intent, "dame detalles de las camisetas", catalog[:1], catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if gen.opts[0].MaxTokens != detailMaxTokens || gen.opts[0].Temperature != detailTemperature {
			t.Errorf("options = %+v, want max_tokens=%d temperature=%v",
				gen.opts[0], detailMaxTokens, detailTemperature)
		}
		if !strings.Contains(got, "• Precio: $15.99") || !strings.Contains(got, "• Stock disponible: 25 unidades") {
			t.Errorf("Compose() = %q, want detailed fallback blocks", got)
		}
	})

	t.Run("single specific product forces detail mode", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []scriptedResponse{
			{err: domain.ErrGeneratorFailure},
		}}
		composer := NewResponseComposer(gen, false)
		intent := domain.Intent{Type: domain.IntentSpecificProduct, Terms: []string{"mochila", "portatil"}}
		routed := []domain.Product{catalog[3]}

		got, err := composer.Compose(ctx, intent, "Mochila para Portátil", routed, catalog)
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if gen.opts[0].MaxTokens != detailMaxTokens {
			t.Errorf("options = %+v, want detail sampling", gen.opts[0])
		}
		if !strings.Contains(gen.prompts[0], "Mochila para Portátil") {
			t.Errorf("prompt missing the product name: %q", gen.prompts[0])
		}
		if !strings.HasPrefix(got, "¡Claro! Aquí está toda la información:") {
			t.Errorf("Compose() = %q, want single-product fallback header", got)
		}
		if !strings.Contains(got, "• Precio: $45.50") {
			t.Errorf("Compose() = %q, want the product's price block", got)
		}
	})
}
