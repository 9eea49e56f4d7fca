// Package handlers provides the built-in stage handler implementations.
// Each handler is a pure function over the work item snapshot: it may compute
// freely but never touches pipeline state. External systems (search indexes,
// model backends) can replace any of them behind the pipeline.Handler
// interface without touching the consumer protocol.
package handlers

import "strings"

// Product is one sellable item in the pricing catalog.
type Product struct {
	SKU       string
	Name      string
	UnitPrice float64
	Keywords  []string
}

// Catalog maps SKUs to products and supports keyword matching against
// requirement text. Matching walks products in insertion order so results
// are deterministic.
type Catalog struct {
	ordered []Product
	bySKU   map[string]Product
}

// NewCatalog builds a catalog from a product list.
func NewCatalog(products []Product) *Catalog {
	bySKU := make(map[string]Product, len(products))
	for _, p := range products {
		bySKU[p.SKU] = p
	}
	return &Catalog{ordered: products, bySKU: bySKU}
}

// DefaultCatalog returns the built-in demo catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Product{
		{
			SKU:       "WP-BASE-100",
			Name:      "Basement waterproofing membrane",
			UnitPrice: 420.0,
			Keywords:  []string{"basement", "membrane", "foundation"},
		},
		{
			SKU:       "WP-TERR-200",
			Name:      "Terrace waterproofing coating",
			UnitPrice: 310.0,
			Keywords:  []string{"terrace", "roof", "coating", "uv"},
		},
		{
			SKU:       "WP-SEAL-300",
			Name:      "Joint sealant system",
			UnitPrice: 95.0,
			Keywords:  []string{"joint", "sealant", "crack"},
		},
		{
			SKU:       "WP-PRIME-400",
			Name:      "Surface primer",
			UnitPrice: 60.0,
			Keywords:  []string{"primer", "surface", "preparation"},
		},
	})
}

// Lookup returns the product for a SKU.
func (c *Catalog) Lookup(sku string) (Product, bool) {
	p, ok := c.bySKU[sku]
	return p, ok
}

// Match returns the first product whose keywords appear in the requirement
// text.
func (c *Catalog) Match(requirement string) (Product, bool) {
	lowered := strings.ToLower(requirement)
	for _, p := range c.ordered {
		for _, keyword := range p.Keywords {
			if strings.Contains(lowered, keyword) {
				return p, true
			}
		}
	}
	return Product{}, false
}
