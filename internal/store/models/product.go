package models

import (
	"strings"

	dErrors "smartstore/pkg/domain-errors"
)

// Product is a catalog entry. Its temperature requirement never changes once
// provisioned; inventories were matched against it at creation time.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Size        string      `json:"size"`
	Category    string      `json:"category"`
	Price       float64     `json:"price"`
	Temperature Temperature `json:"temperature"`
}

func NewProduct(id, name, description, size, category string, price float64, temperature Temperature) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "product id is required")
	}
	if price < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "price cannot be negative")
	}
	if !temperature.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown product temperature")
	}
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Size:        size,
		Category:    category,
		Price:       price,
		Temperature: temperature,
	}, nil
}
