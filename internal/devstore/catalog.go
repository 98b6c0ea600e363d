package devstore

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"shopsync/internal/model"
)

// Product is a catalog entry used to enrich collection items.
type Product struct {
	ID            model.ProductID
	Name          string
	Price         model.Money
	OriginalPrice model.Money
	Image         string
	Slug          string
}

// catalogFile is the on-disk catalog layout. YAML is a superset of JSON, so
// one decoder reads both; prices are decimals in major units.
type catalogFile struct {
	Products []struct {
		ID            string `yaml:"id"`
		Name          string `yaml:"name"`
		Price         string `yaml:"price"`
		OriginalPrice string `yaml:"originalPrice"`
		Image         string `yaml:"image"`
		Slug          string `yaml:"slug"`
	} `yaml:"products"`
}

// Catalog is a read-only product lookup.
type Catalog struct {
	products map[model.ProductID]Product
}

// NewCatalog builds a catalog from products.
func NewCatalog(products []Product) *Catalog {
	c := &Catalog{products: make(map[model.ProductID]Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// LoadCatalog reads a YAML or JSON catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes catalog data.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	products := make([]Product, 0, len(f.Products))
	for i, p := range f.Products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog product %d: id is required", i)
		}
		price := model.Money(model.ParseCents(strings.TrimSpace(p.Price)))
		if price < 0 {
			return nil, fmt.Errorf("catalog product %s: negative price", id)
		}
		products = append(products, Product{
			ID:            model.ProductID(id),
			Name:          p.Name,
			Price:         price,
			OriginalPrice: model.Money(model.ParseCents(strings.TrimSpace(p.OriginalPrice))),
			Image:         p.Image,
			Slug:          p.Slug,
		})
	}
	return NewCatalog(products), nil
}

// Lookup returns the product with id.
func (c *Catalog) Lookup(id model.ProductID) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	p, ok := c.products[id]
	return p, ok
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// enrich fills display fields of it from the catalog entry.
func (p Product) enrich(it model.Item) model.Item {
	it.Price = p.Price
	it.OriginalPrice = p.OriginalPrice
	it.Image = p.Image
	it.Slug = p.Slug
	return it
}
