package models

import (
	"strings"
	"time"

	dErrors "smartstore/pkg/domain-errors"
)

// Customer is a shopper known to the directory.
//
// Invariants:
//   - at most one basket is assigned (BasketID)
//   - Location is nil until the customer is seen in a store aisle
type Customer struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Type           CustomerType   `json:"type"`
	Email          string         `json:"email"`
	AccountAddress string         `json:"account_address"`
	AgeGroup       AgeGroup       `json:"age_group"`
	Location       *StoreLocation `json:"location,omitempty"`
	BasketID       string         `json:"basket_id,omitempty"`
	LastSeen       time.Time      `json:"last_seen"`
}

func NewCustomer(id, firstName, lastName string, customerType CustomerType, email, accountAddress string, ageGroup AgeGroup) (*Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "customer id is required")
	}
	if !customerType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown customer type")
	}
	if ageGroup == "" {
		ageGroup = AgeGroupAdult
	}
	if !ageGroup.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown age group")
	}
	return &Customer{
		ID:             id,
		FirstName:      firstName,
		LastName:       lastName,
		Type:           customerType,
		Email:          email,
		AccountAddress: accountAddress,
		AgeGroup:       ageGroup,
	}, nil
}

// Clone returns a copy that does not share the location pointer.
func (c *Customer) Clone() *Customer {
	cp := *c
	if c.Location != nil {
		loc := *c.Location
		cp.Location = &loc
	}
	return &cp
}

// CanPurchase rejects guests.
func (c *Customer) CanPurchase() error {
	if c.Type == CustomerTypeGuest {
		return dErrors.New(dErrors.CodeInvalidState, "guests may not purchase")
	}
	return nil
}

// MoveTo records the customer's current aisle.
func (c *Customer) MoveTo(loc StoreLocation, now time.Time) {
	c.Location = &loc
	c.LastSeen = now
}
