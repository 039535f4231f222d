package models

import (
	"fmt"
	"strings"

	dErrors "smartstore/pkg/domain-errors"
)

// Inventory is a stock entry of one product on one shelf.
//
// Invariants:
//   - 0 <= Count <= Capacity at all times
//   - Location and ProductID are fixed after provisioning
type Inventory struct {
	ID        string            `json:"id"`
	Location  InventoryLocation `json:"location"`
	Capacity  int               `json:"capacity"`
	Count     int               `json:"count"`
	ProductID string            `json:"product_id"`
	Type      InventoryType     `json:"type"`
}

func NewInventory(id string, location InventoryLocation, capacity, count int, productID string, invType InventoryType) (*Inventory, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "inventory id is required")
	}
	if productID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "product id is required")
	}
	if !invType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown inventory type")
	}
	if capacity < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidState, "capacity cannot be negative")
	}
	if count < 0 || count > capacity {
		return nil, dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("count %d must be between 0 and capacity %d", count, capacity))
	}
	return &Inventory{
		ID:        id,
		Location:  location,
		Capacity:  capacity,
		Count:     count,
		ProductID: productID,
		Type:      invType,
	}, nil
}

// CanAdjust checks that applying delta keeps the count within bounds.
// Use with ApplyAdjust when several mutations must be validated before any is applied.
func (i *Inventory) CanAdjust(delta int) error {
	next := i.Count + delta
	if next < 0 {
		return dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("inventory %s has %d on hand, cannot remove %d", i.ID, i.Count, -delta))
	}
	if next > i.Capacity {
		return dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("inventory %s would exceed capacity %d", i.ID, i.Capacity))
	}
	return nil
}

// ApplyAdjust changes the count. Call CanAdjust first.
func (i *Inventory) ApplyAdjust(delta int) {
	i.Count += delta
}

// Adjust validates and applies delta in one call.
func (i *Inventory) Adjust(delta int) error {
	if err := i.CanAdjust(delta); err != nil {
		return err
	}
	i.ApplyAdjust(delta)
	return nil
}
