package models

import (
	dErrors "smartstore/pkg/domain-errors"
)

// Shelf holds inventories at a single temperature.
type Shelf struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Level       ShelfLevel            `json:"level"`
	Description string                `json:"description"`
	Temperature Temperature           `json:"temperature"`
	Inventories map[string]*Inventory `json:"inventories"`
}

// Clone copies the shelf and its inventories.
func (s *Shelf) Clone() *Shelf {
	cp := *s
	cp.Inventories = make(map[string]*Inventory, len(s.Inventories))
	for id, inv := range s.Inventories {
		invCopy := *inv
		cp.Inventories[id] = &invCopy
	}
	return &cp
}

func (s *Shelf) accepts(product *Product) error {
	if s.Temperature != product.Temperature {
		return dErrors.New(dErrors.CodeInvalidState,
			"temperature mismatch: shelf is "+string(s.Temperature)+", product requires "+string(product.Temperature))
	}
	return nil
}
