package usecase

import (
	"log"
	"sort"
	"strings"

	"github.com/tiendachat/backend/internal/domain"
)

// Scoring weights for keyword relevance. The name and category bonuses
// stack on top of the base match: a name hit contributes 30, not 20.
const (
	keywordMatchScore  = 10
	nameMatchBonus     = 20
	categoryMatchBonus = 15
)

// DefaultMaxProducts is the ranking cap used when the caller passes no
// explicit limit.
const DefaultMaxProducts = 10

// generalBrowseTokens short-circuit ranking: a question containing any of
// them asks for the whole catalog, not a filtered slice.
var generalBrowseTokens = []string{"todos", "todo", "catálogo", "catalogo", "productos"}

// scoredProduct pairs a catalog entry with its relevance score. Lives
// only inside Rank.
type scoredProduct struct {
	product domain.Product
	score   int
}

// RelevanceRanker scores catalog entries against the keywords of a
// question. It is the primary fallback search and is also consumed by
// the intent router when intent-directed lookups come up empty.
type RelevanceRanker struct {
	enableDebugLogging bool
}

// NewRelevanceRanker creates a new relevance ranker
func NewRelevanceRanker(enableDebugLogging bool) *RelevanceRanker {
	return &RelevanceRanker{enableDebugLogging: enableDebugLogging}
}

// Rank returns the most relevant catalog entries for a question, at most
// maxProducts of them. Results are always a subsequence of the catalog:
// sorted by descending score, with equal scores keeping catalog order.
// General-browse questions and questions with no scoring match fall back
// to the first maxProducts entries in catalog order.
func (r *RelevanceRanker) Rank(question string, catalog []domain.Product, maxProducts int) []domain.Product {
	if maxProducts <= 0 {
		maxProducts = DefaultMaxProducts
	}

	keywords := ExtractKeywords(question)
	questionLower := strings.ToLower(question)

	if len(keywords) == 0 || containsAny(questionLower, generalBrowseTokens) {
		if r.enableDebugLogging {
			log.Printf("[rank] general question, returning first %d products", maxProducts)
		}
		return firstN(catalog, maxProducts)
	}

	if r.enableDebugLogging {
		log.Printf("[rank] extracted keywords: %v", keywords)
	}

	var scored []scoredProduct
	for _, product := range catalog {
		nameTokens := normalizeTokenSet(product.Name)
		categoryTokens := normalizeTokenSet(product.Category)
		descriptionTokens := normalizeTokenSet(product.Description)

		score := 0
		for _, keyword := range keywords {
			if !nameTokens[keyword] && !categoryTokens[keyword] && !descriptionTokens[keyword] {
				continue
			}
			score += keywordMatchScore
			if nameTokens[keyword] {
				score += nameMatchBonus
			}
			if categoryTokens[keyword] {
				score += categoryMatchBonus
			}
		}

		if score > 0 {
			scored = append(scored, scoredProduct{product: product, score: score})
		}
	}

	if len(scored) == 0 {
		log.Printf("[rank] no relevant match for %v, returning first %d products", keywords, maxProducts)
		return firstN(catalog, maxProducts)
	}

	// Stable sort so equal scores preserve catalog order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	results := make([]domain.Product, 0, min(len(scored), maxProducts))
	for _, sp := range scored {
		if len(results) == maxProducts {
			break
		}
		results = append(results, sp.product)
	}

	if r.enableDebugLogging {
		log.Printf("[rank] found %d relevant products for %v", len(results), keywords)
	}

	return results
}

// firstN returns the first n catalog entries without copying beyond the
// slice header.
func firstN(catalog []domain.Product, n int) []domain.Product {
	if len(catalog) <= n {
		return catalog
	}
	return catalog[:n]
}

// containsAny reports whether s contains any of the literal substrings.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
