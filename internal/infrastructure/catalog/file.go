package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tiendachat/backend/internal/domain"
)

// catalogFile is the on-disk shape: {"products": [...]}.
type catalogFile struct {
	Products []domain.Product `json:"products"`
}

// FileLoader reads the product catalog from a JSON file. Every Load
// re-reads the file, so catalog edits are picked up without a restart.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the given catalog file path
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load returns the products in file order.
func (l *FileLoader) Load(ctx context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}

	return applyDefaults(file.Products), nil
}

// applyDefaults fills the documented field defaults on loaded rows.
func applyDefaults(products []domain.Product) []domain.Product {
	for i := range products {
		if products[i].Category == "" {
			products[i].Category = "N/A"
		}
		if products[i].Description == "" {
			products[i].Description = "N/A"
		}
	}
	return products
}
