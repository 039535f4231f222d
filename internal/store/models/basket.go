package models

import (
	"fmt"
	"strings"

	dErrors "smartstore/pkg/domain-errors"
)

// LineItem is a quantity of a product drawn from one inventory.
type LineItem struct {
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	InventoryID string `json:"inventory_id"`
}

// Basket holds line items for at most one customer.
//
// Invariants:
//   - every line item quantity is positive
//   - CustomerID is set once; reassignment to another customer is rejected
//   - StoreID is bound by the first added item; every line item draws from
//     an inventory of that store
type Basket struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id,omitempty"`
	StoreID    string     `json:"store_id,omitempty"`
	Items      []LineItem `json:"items"`
}

func NewBasket(id string) (*Basket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "basket id is required")
	}
	return &Basket{ID: id, Items: []LineItem{}}, nil
}

func (b *Basket) Clone() *Basket {
	cp := *b
	cp.Items = append([]LineItem{}, b.Items...)
	return &cp
}

// IsEmpty reports whether the basket holds no items.
func (b *Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

// Quantity totals the quantity of a product across line items.
func (b *Basket) Quantity(productID string) int {
	total := 0
	for _, it := range b.Items {
		if it.ProductID == productID {
			total += it.Quantity
		}
	}
	return total
}

// CanAssign checks the basket may be bound to customerID.
func (b *Basket) CanAssign(customerID string) error {
	if b.CustomerID != "" && b.CustomerID != customerID {
		return dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("basket %s is already assigned to customer %s", b.ID, b.CustomerID))
	}
	return nil
}

// CanDrawFrom checks that stock from storeID may enter the basket.
func (b *Basket) CanDrawFrom(storeID string) error {
	if b.StoreID != "" && b.StoreID != storeID && !b.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("basket %s holds items from store %s", b.ID, b.StoreID))
	}
	return nil
}

// AddItem appends a line item or merges it into an existing one drawn from the same inventory.
func (b *Basket) AddItem(productID, inventoryID, storeID string, quantity int) error {
	if quantity <= 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	if err := b.CanDrawFrom(storeID); err != nil {
		return err
	}
	b.StoreID = storeID
	for i := range b.Items {
		if b.Items[i].ProductID == productID && b.Items[i].InventoryID == inventoryID {
			b.Items[i].Quantity += quantity
			return nil
		}
	}
	b.Items = append(b.Items, LineItem{ProductID: productID, Quantity: quantity, InventoryID: inventoryID})
	return nil
}

// Return is stock to give back to an inventory when items leave the basket.
type Return struct {
	InventoryID string
	Quantity    int
}

// PlanRemoval works out which inventories receive quantity units of
// productID, taking from the most recently added line items first. The
// basket is not modified; pass the plan to ApplyRemoval.
func (b *Basket) PlanRemoval(productID string, quantity int) ([]Return, error) {
	if quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	held := b.Quantity(productID)
	if held == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound,
			fmt.Sprintf("product %s is not in basket %s", productID, b.ID))
	}
	if quantity > held {
		return nil, dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("basket %s holds %d of product %s, cannot remove %d", b.ID, held, productID, quantity))
	}
	var plan []Return
	remaining := quantity
	for i := len(b.Items) - 1; i >= 0 && remaining > 0; i-- {
		it := b.Items[i]
		if it.ProductID != productID {
			continue
		}
		take := min(it.Quantity, remaining)
		plan = append(plan, Return{InventoryID: it.InventoryID, Quantity: take})
		remaining -= take
	}
	return plan, nil
}

// ApplyRemoval removes the planned quantities of productID, dropping line items that reach zero.
func (b *Basket) ApplyRemoval(productID string, plan []Return) {
	for _, r := range plan {
		for i := len(b.Items) - 1; i >= 0; i-- {
			if b.Items[i].ProductID == productID && b.Items[i].InventoryID == r.InventoryID {
				b.Items[i].Quantity -= r.Quantity
				if b.Items[i].Quantity == 0 {
					b.Items = append(b.Items[:i], b.Items[i+1:]...)
				}
				break
			}
		}
	}
	if b.IsEmpty() {
		b.StoreID = ""
	}
}

// PlanClear returns every line item to its inventory.
func (b *Basket) PlanClear() []Return {
	plan := make([]Return, 0, len(b.Items))
	for _, it := range b.Items {
		plan = append(plan, Return{InventoryID: it.InventoryID, Quantity: it.Quantity})
	}
	return plan
}

// Clear empties the basket and releases its store binding.
func (b *Basket) Clear() {
	b.Items = []LineItem{}
	b.StoreID = ""
}
