// Package catalog is the global product registry. It has its own lock so
// catalog reads never contend with per-store mutations.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"smartstore/internal/datastore"
	"smartstore/internal/store/models"
	dErrors "smartstore/pkg/domain-errors"
)

// Catalog maps product id to product. Returned products are copies.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]*models.Product
	ds       datastore.DataStore
}

// New builds an empty catalog persisting into ds. A nil ds keeps the catalog in memory only.
func New(ds datastore.DataStore) *Catalog {
	return &Catalog{products: make(map[string]*models.Product), ds: ds}
}

// Load replaces the in-memory catalog with the persisted products.
func (c *Catalog) Load(ctx context.Context) error {
	if c.ds == nil {
		return nil
	}
	loaded := make(map[string]*models.Product)
	err := datastore.LoadAll(ctx, c.ds, datastore.PrefixProducts, func(key string, value []byte) error {
		var p models.Product
		if err := datastore.Decode(value, &p); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		loaded[p.ID] = &p
		return nil
	})
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	c.mu.Lock()
	c.products = loaded
	c.mu.Unlock()
	return nil
}

// Provision adds a product; ids are unique across the whole catalog.
func (c *Catalog) Provision(ctx context.Context, p *models.Product) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.products[p.ID]; exists {
		return nil, dErrors.New(dErrors.CodeDuplicateEntity, "product "+p.ID+" already exists")
	}
	if c.ds != nil {
		value, err := datastore.Encode(p)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode product")
		}
		if err := c.ds.Put(ctx, datastore.Key(datastore.PrefixProducts, p.ID), value); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist product")
		}
	}
	stored := *p
	c.products[p.ID] = &stored
	out := stored
	return &out, nil
}

// Get returns a copy of the product.
func (c *Catalog) Get(id string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "product "+id+" not found")
	}
	out := *p
	return &out, nil
}

// List returns copies of every product ordered by id.
func (c *Catalog) List() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}
