package models

import (
	"sort"
	"strings"
	"time"

	dErrors "smartstore/pkg/domain-errors"
)

// Store is the aggregate root for one physical store.
//
// Invariants:
//   - ID is assigned once at provisioning
//   - aisle numbers are unique within the store; shelf ids unique within an aisle
//   - shelf levels are unique within an aisle
//   - inventory ids are unique within the store; Inventories indexes every
//     inventory held by a shelf, keyed by inventory id
//   - device ids are unique within the store
//
// The aggregate holds no back-references: customers and baskets are tracked by
// id only, so a Store serializes as a plain tree.
type Store struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Address     string                       `json:"address"`
	Description string                       `json:"description"`
	Aisles      map[string]*Aisle            `json:"aisles"`
	Inventories map[string]InventoryLocation `json:"inventories"`
	Customers   map[string]time.Time         `json:"customers"`
	Baskets     map[string]bool              `json:"baskets"`
	Devices     map[string]*Device           `json:"devices"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

func NewStore(id, name, address string, now time.Time) (*Store, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "store id is required")
	}
	return &Store{
		ID:          id,
		Name:        name,
		Address:     address,
		Aisles:      make(map[string]*Aisle),
		Inventories: make(map[string]InventoryLocation),
		Customers:   make(map[string]time.Time),
		Baskets:     make(map[string]bool),
		Devices:     make(map[string]*Device),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Clone returns a deep copy sharing no mutable state with s.
func (s *Store) Clone() *Store {
	cp := *s
	cp.Aisles = make(map[string]*Aisle, len(s.Aisles))
	for n, a := range s.Aisles {
		cp.Aisles[n] = a.Clone()
	}
	cp.Inventories = make(map[string]InventoryLocation, len(s.Inventories))
	for id, loc := range s.Inventories {
		cp.Inventories[id] = loc
	}
	cp.Customers = make(map[string]time.Time, len(s.Customers))
	for id, seen := range s.Customers {
		cp.Customers[id] = seen
	}
	cp.Baskets = make(map[string]bool, len(s.Baskets))
	for id, v := range s.Baskets {
		cp.Baskets[id] = v
	}
	cp.Devices = make(map[string]*Device, len(s.Devices))
	for id, d := range s.Devices {
		dc := *d
		cp.Devices[id] = &dc
	}
	return &cp
}

// EnsureMaps initializes nil collections, e.g. after decoding an old snapshot.
func (s *Store) EnsureMaps() {
	if s.Aisles == nil {
		s.Aisles = make(map[string]*Aisle)
	}
	for _, a := range s.Aisles {
		if a.Shelves == nil {
			a.Shelves = make(map[string]*Shelf)
		}
		for _, sh := range a.Shelves {
			if sh.Inventories == nil {
				sh.Inventories = make(map[string]*Inventory)
			}
		}
	}
	if s.Inventories == nil {
		s.Inventories = make(map[string]InventoryLocation)
	}
	if s.Customers == nil {
		s.Customers = make(map[string]time.Time)
	}
	if s.Baskets == nil {
		s.Baskets = make(map[string]bool)
	}
	if s.Devices == nil {
		s.Devices = make(map[string]*Device)
	}
}

// Update overwrites the descriptive fields that are non-empty.
func (s *Store) Update(name, address, description string, now time.Time) {
	if name != "" {
		s.Name = name
	}
	if address != "" {
		s.Address = address
	}
	if description != "" {
		s.Description = description
	}
	s.UpdatedAt = now
}

// Aisle returns the aisle with the given number.
func (s *Store) Aisle(number string) (*Aisle, error) {
	a, ok := s.Aisles[number]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "aisle "+number+" not found in store "+s.ID)
	}
	return a, nil
}

// AddAisle provisions an aisle; numbers are unique within the store.
func (s *Store) AddAisle(number, name, description string, location AisleLocation) (*Aisle, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "aisle number is required")
	}
	if !location.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown aisle location")
	}
	if _, exists := s.Aisles[number]; exists {
		return nil, dErrors.New(dErrors.CodeDuplicateEntity, "aisle "+number+" already exists in store "+s.ID)
	}
	a := &Aisle{
		Number:      number,
		Name:        name,
		Description: description,
		Location:    location,
		Shelves:     make(map[string]*Shelf),
	}
	s.Aisles[number] = a
	return a, nil
}

// Shelf resolves a shelf through its aisle.
func (s *Store) Shelf(aisleNumber, shelfID string) (*Shelf, error) {
	a, err := s.Aisle(aisleNumber)
	if err != nil {
		return nil, err
	}
	return a.Shelf(shelfID)
}

// AddInventory places a new inventory on its shelf.
//
// Checks run in order: shelf exists, shelf temperature matches the product,
// 0 <= count <= capacity, inventory id unused in this store. Nothing is
// mutated unless every check passes.
func (s *Store) AddInventory(id string, aisleNumber, shelfID string, capacity, count int, product *Product, invType InventoryType) (*Inventory, error) {
	id = strings.TrimSpace(id)
	sh, err := s.Shelf(aisleNumber, shelfID)
	if err != nil {
		return nil, err
	}
	if err := sh.accepts(product); err != nil {
		return nil, err
	}
	loc := InventoryLocation{StoreID: s.ID, AisleNumber: aisleNumber, ShelfID: shelfID}
	inv, err := NewInventory(id, loc, capacity, count, product.ID, invType)
	if err != nil {
		return nil, err
	}
	if _, exists := s.Inventories[id]; exists {
		return nil, dErrors.New(dErrors.CodeDuplicateEntity, "inventory "+id+" already exists in store "+s.ID)
	}
	sh.Inventories[id] = inv
	s.Inventories[id] = loc
	return inv, nil
}

// Inventory resolves an inventory through the flat index.
func (s *Store) Inventory(id string) (*Inventory, error) {
	loc, ok := s.Inventories[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "inventory "+id+" not found in store "+s.ID)
	}
	sh, err := s.Shelf(loc.AisleNumber, loc.ShelfID)
	if err != nil {
		return nil, err
	}
	inv, ok := sh.Inventories[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "inventory "+id+" missing from shelf "+loc.String())
	}
	return inv, nil
}

// InventoryForProduct finds the single inventory of productID in the given
// aisle. Zero or several candidates both fail with CodeNotFound: the engine
// does not choose between duplicate stock entries.
func (s *Store) InventoryForProduct(aisleNumber, productID string) (*Inventory, error) {
	a, err := s.Aisle(aisleNumber)
	if err != nil {
		return nil, err
	}
	var matches []*Inventory
	for _, sh := range a.Shelves {
		for _, inv := range sh.Inventories {
			if inv.ProductID == productID {
				matches = append(matches, inv)
			}
		}
	}
	switch len(matches) {
	case 0:
		return nil, dErrors.New(dErrors.CodeNotFound,
			"no inventory of product "+productID+" in aisle "+aisleNumber)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		sort.Strings(ids)
		return nil, dErrors.New(dErrors.CodeNotFound,
			"product "+productID+" is stocked ambiguously in aisle "+aisleNumber+" ("+strings.Join(ids, ", ")+")")
	}
}

// AddDevice registers a device located in one of the store's aisles.
func (s *Store) AddDevice(d *Device) error {
	if _, err := s.Aisle(d.Location.AisleNumber); err != nil {
		return err
	}
	if _, exists := s.Devices[d.ID]; exists {
		return dErrors.New(dErrors.CodeDuplicateEntity, "device "+d.ID+" already exists in store "+s.ID)
	}
	s.Devices[d.ID] = d
	return nil
}

func (s *Store) Device(id string) (*Device, error) {
	d, ok := s.Devices[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "device "+id+" not found in store "+s.ID)
	}
	return d, nil
}

// EnterCustomer records that a customer is in the store.
func (s *Store) EnterCustomer(customerID string, at time.Time) {
	s.Customers[customerID] = at
}

func (s *Store) LeaveCustomer(customerID string) {
	delete(s.Customers, customerID)
}

// DeviceIDs returns device ids in sorted order.
func (s *Store) DeviceIDs() []string {
	ids := make([]string, 0, len(s.Devices))
	for id := range s.Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// InventoryIDs returns inventory ids in sorted order.
func (s *Store) InventoryIDs() []string {
	ids := make([]string, 0, len(s.Inventories))
	for id := range s.Inventories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
