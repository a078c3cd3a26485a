package usecase

import (
	"log"
	"strings"

	"github.com/tiendachat/backend/internal/domain"
)

// Result caps per intent tag.
const (
	specificFallbackMax = 3
	categoryMaxProducts = 15
	categoryFallbackMax = 10
	generalMaxProducts  = 8
)

// CatalogSearchRouter dispatches the catalog search strategy for a
// classified intent, falling back to relevance ranking whenever the
// intent-directed lookup comes up empty.
type CatalogSearchRouter struct {
	ranker             *RelevanceRanker
	enableDebugLogging bool
}

// NewCatalogSearchRouter creates a new catalog search router
func NewCatalogSearchRouter(ranker *RelevanceRanker, enableDebugLogging bool) *CatalogSearchRouter {
	return &CatalogSearchRouter{
		ranker:             ranker,
		enableDebugLogging: enableDebugLogging,
	}
}

// Search returns the products a reply should be grounded on. Off-catalog
// and available-categories intents need no products: they are answered
// without a search. Unrecognized tags get the general treatment.
func (r *CatalogSearchRouter) Search(intent domain.Intent, question string, catalog []domain.Product) []domain.Product {
	if r.enableDebugLogging {
		log.Printf("[catalog] searching tipo=%q terms=%v category=%q", intent.Type, intent.Terms, intent.Category)
	}

	switch intent.Type {
	case domain.IntentOffCatalog, domain.IntentAvailableCategories:
		return nil
	case domain.IntentSpecificProduct:
		return r.searchSpecific(intent, question, catalog)
	case domain.IntentCategory:
		return r.searchCategory(intent, question, catalog)
	default:
		return firstN(catalog, generalMaxProducts)
	}
}

// searchSpecific resolves a single product: every normalized term must
// be a substring of the normalized product name. The first catalog match
// wins; names are not unique. No terms or no match falls back to a
// narrow relevance ranking.
func (r *CatalogSearchRouter) searchSpecific(intent domain.Intent, question string, catalog []domain.Product) []domain.Product {
	if len(intent.Terms) > 0 {
		for _, product := range catalog {
			if matchesAllTerms(normalizeText(product.Name), intent.Terms) {
				if r.enableDebugLogging {
					log.Printf("[catalog] resolved specific product: %s", product.Name)
				}
				return []domain.Product{product}
			}
		}
	}
	return r.ranker.Rank(question, catalog, specificFallbackMax)
}

// searchCategory tries case-insensitive exact category equality first,
// then a looser any-term substring pass over the product's full text
// (the low-confidence fallback, hence OR rather than AND semantics),
// then relevance ranking.
func (r *CatalogSearchRouter) searchCategory(intent domain.Intent, question string, catalog []domain.Product) []domain.Product {
	if intent.Category != "" {
		var matches []domain.Product
		for _, product := range catalog {
			if strings.EqualFold(intent.Category, product.Category) {
				matches = append(matches, product)
			}
		}
		if len(matches) > 0 {
			if r.enableDebugLogging {
				log.Printf("[catalog] found %d products in category %q", len(matches), intent.Category)
			}
			return firstN(matches, categoryMaxProducts)
		}
		log.Printf("[catalog] no products with exact category %q", intent.Category)
	}

	if len(intent.Terms) > 0 {
		var matches []domain.Product
		for _, product := range catalog {
			text := normalizeText(product.Name + " " + product.Description + " " + product.Category)
			if matchesAnyTerm(text, intent.Terms) {
				matches = append(matches, product)
			}
		}
		if len(matches) > 0 {
			if r.enableDebugLogging {
				log.Printf("[catalog] found %d products by terms %v", len(matches), intent.Terms)
			}
			return firstN(matches, categoryMaxProducts)
		}
	}

	return r.ranker.Rank(question, catalog, categoryFallbackMax)
}

func matchesAllTerms(normalizedText string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(normalizedText, NormalizeWord(strings.ToLower(term))) {
			return false
		}
	}
	return true
}

func matchesAnyTerm(normalizedText string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(normalizedText, NormalizeWord(strings.ToLower(term))) {
			return true
		}
	}
	return false
}
