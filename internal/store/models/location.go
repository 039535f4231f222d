package models

import "fmt"

// StoreLocation identifies where a customer or device is physically situated.
type StoreLocation struct {
	StoreID     string `json:"store_id"`
	AisleNumber string `json:"aisle_number"`
}

func (l StoreLocation) String() string {
	return fmt.Sprintf("%s:%s", l.StoreID, l.AisleNumber)
}

// InventoryLocation identifies the shelf a stock entry sits on.
type InventoryLocation struct {
	StoreID     string `json:"store_id"`
	AisleNumber string `json:"aisle_number"`
	ShelfID     string `json:"shelf_id"`
}

func (l InventoryLocation) String() string {
	return fmt.Sprintf("%s:%s:%s", l.StoreID, l.AisleNumber, l.ShelfID)
}

// StoreLocation drops the shelf coordinate.
func (l InventoryLocation) StoreLocation() StoreLocation {
	return StoreLocation{StoreID: l.StoreID, AisleNumber: l.AisleNumber}
}
