package domain

// Product is a single catalog entry. Catalog order is significant: it is
// the tie-break order for ranking and the truncation order for every
// "first N" operation. Product names are not assumed unique.
type Product struct {
	Name        string  `json:"name" db:"name"`
	Price       float64 `json:"price" db:"price"`
	Category    string  `json:"category" db:"category"`
	Description string  `json:"description" db:"description"`
	Stock       int     `json:"stock" db:"stock"`
}

// Intent tags. The values are the literal Spanish tags the classification
// prompt teaches the model, so they double as wire format.
const (
	IntentAvailableCategories = "categorias_disponibles"
	IntentCategory            = "categoria"
	IntentSpecificProduct     = "producto_especifico"
	IntentGeneral             = "general"
	IntentOffCatalog          = "fuera_catalogo"
)

// Intent is the classified purpose of a customer question. Instances
// reaching downstream code are always well-formed: the classifier
// substitutes DefaultIntent rather than emitting partial data.
// An empty Category means no category was identified.
type Intent struct {
	Type     string   `json:"tipo"`
	Terms    []string `json:"terminos"`
	Category string   `json:"categoria"`
}

// DefaultIntent is the intent substituted whenever classification fails.
func DefaultIntent() Intent {
	return Intent{Type: IntentGeneral, Terms: []string{}}
}

// ChatRequest is the body of a chat API call.
type ChatRequest struct {
	Content string `json:"content" binding:"required"`
}

// ChatResponse carries the final reply text back to the caller.
type ChatResponse struct {
	Response string `json:"response"`
}
