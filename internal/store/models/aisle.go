package models

import (
	"strings"

	dErrors "smartstore/pkg/domain-errors"
)

// Aisle groups shelves. No two shelves of an aisle share a level.
type Aisle struct {
	Number      string            `json:"number"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Location    AisleLocation     `json:"location"`
	Shelves     map[string]*Shelf `json:"shelves"`
}

// Clone returns a deep copy of the aisle and its shelves.
func (a *Aisle) Clone() *Aisle {
	cp := *a
	cp.Shelves = make(map[string]*Shelf, len(a.Shelves))
	for id, sh := range a.Shelves {
		cp.Shelves[id] = sh.Clone()
	}
	return &cp
}

// Shelf returns the shelf with the given id.
func (a *Aisle) Shelf(id string) (*Shelf, error) {
	sh, ok := a.Shelves[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "shelf "+id+" not found in aisle "+a.Number)
	}
	return sh, nil
}

// AddShelf provisions a shelf after scanning the siblings for an id or level collision.
func (a *Aisle) AddShelf(id, name string, level ShelfLevel, description string, temperature Temperature) (*Shelf, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "shelf id is required")
	}
	if !level.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown shelf level")
	}
	if !temperature.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown shelf temperature")
	}
	if _, exists := a.Shelves[id]; exists {
		return nil, dErrors.New(dErrors.CodeDuplicateEntity, "shelf "+id+" already exists in aisle "+a.Number)
	}
	for _, sibling := range a.Shelves {
		if sibling.Level == level {
			return nil, dErrors.New(dErrors.CodeInvalidState,
				"aisle "+a.Number+" already has a "+string(level)+" shelf ("+sibling.ID+")")
		}
	}
	sh := &Shelf{
		ID:          id,
		Name:        name,
		Level:       level,
		Description: description,
		Temperature: temperature,
		Inventories: make(map[string]*Inventory),
	}
	if a.Shelves == nil {
		a.Shelves = make(map[string]*Shelf)
	}
	a.Shelves[id] = sh
	return sh, nil
}
