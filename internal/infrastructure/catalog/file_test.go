package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalogFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing catalog file: %v", err)
	}
	return path
}

func TestFileLoaderLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("reads products in file order", func(t *testing.T) {
		path := writeCatalogFile(t, `{
			"products": [
				{"name": "Camiseta Básica", "price": 15.99, "category": "ropa", "description": "Algodón suave", "stock": 25},
				{"name": "Zapatillas Running", "price": 89.99, "category": "calzado", "description": "Para correr", "stock": 10}
			]
		}`)

		products, err := NewFileLoader(path).Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(products) != 2 {
			t.Fatalf("Load() returned %d products, want 2", len(products))
		}
		if products[0].Name != "Camiseta Básica" || products[1].Name != "Zapatillas Running" {
			t.Errorf("Load() order = [%s, %s], want file order", products[0].Name, products[1].Name)
		}
		if products[0].Price != 15.99 || products[0].Stock != 25 {
			t.Errorf("Load()[0] = %+v, want price and stock decoded", products[0])
		}
	})

	t.Run("fills missing category and description", func(t *testing.T) {
		path := writeCatalogFile(t, `{"products": [{"name": "Misterio", "price": 5.0}]}`)

		products, err := NewFileLoader(path).Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if products[0].Category != "N/A" || products[0].Description != "N/A" {
			t.Errorf("Load()[0] = %+v, want N/A defaults", products[0])
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := NewFileLoader(filepath.Join(t.TempDir(), "missing.json")).Load(ctx)
		if err == nil {
			t.Fatal("Load() succeeded, want error for missing file")
		}
	})

	t.Run("malformed JSON is an error", func(t *testing.T) {
		path := writeCatalogFile(t, `{"products": [`)
		_, err := NewFileLoader(path).Load(ctx)
		if err == nil {
			t.Fatal("Load() succeeded, want error for malformed JSON")
		}
	})

	t.Run("picks up edits between loads", func(t *testing.T) {
		path := writeCatalogFile(t, `{"products": [{"name": "Uno", "price": 1}]}`)
		loader := NewFileLoader(path)

		first, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if err := os.WriteFile(path, []byte(`{"products": [{"name": "Uno", "price": 1}, {"name": "Dos", "price": 2}]}`), 0o644); err != nil {
			t.Fatalf("rewriting catalog file: %v", err)
		}

		second, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(first) != 1 || len(second) != 2 {
			t.Errorf("Load() sizes = %d then %d, want 1 then 2", len(first), len(second))
		}
	})
}
