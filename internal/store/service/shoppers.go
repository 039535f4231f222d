package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"smartstore/internal/datastore"
	"smartstore/internal/store/models"
	dErrors "smartstore/pkg/domain-errors"
	"smartstore/pkg/platform/sentinel"
	"smartstore/pkg/requestcontext"
)

// ProvisionCustomer registers a customer. An empty age group defaults to adult.
func (s *Service) ProvisionCustomer(ctx context.Context, id, firstName, lastName string, customerType models.CustomerType, email, accountAddress string, ageGroup models.AgeGroup) (_ *models.Customer, err error) {
	ctx, done := s.track(ctx, "provision customer", attribute.String("customer_id", id))
	defer func() { err = done(err) }()

	c, err := models.NewCustomer(id, firstName, lastName, customerType, email, accountAddress, ageGroup)
	if err != nil {
		return nil, err
	}
	c.LastSeen = requestcontext.Now(ctx)

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()

	if _, exists := s.customers[c.ID]; exists {
		return nil, dErrors.New(dErrors.CodeDuplicateEntity, "customer "+c.ID+" already exists")
	}
	if err := s.persist(ctx, map[string]any{datastore.Key(datastore.PrefixCustomers, c.ID): c}); err != nil {
		return nil, err
	}
	s.customers[c.ID] = c
	s.logAudit(ctx, "customer_provisioned", "customer_id", c.ID, "customer_type", string(c.Type))
	return c.Clone(), nil
}

func (s *Service) ShowCustomer(ctx context.Context, id string) (_ *models.Customer, err error) {
	_, done := s.track(ctx, "show customer")
	defer func() { err = done(err) }()

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()
	c, err := s.customerLocked(id)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// UpdateCustomer records that the customer was seen in an aisle. The customer
// moves from the previous store's customer set into the new one.
func (s *Service) UpdateCustomer(ctx context.Context, id, storeID, aisleNumber string) (_ *models.Customer, err error) {
	ctx, done := s.track(ctx, "update customer",
		attribute.String("customer_id", id), attribute.String("store_id", storeID))
	defer func() { err = done(err) }()

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()

	current, err := s.customerLocked(id)
	if err != nil {
		return nil, err
	}
	target, err := s.lockStore(storeID)
	if err != nil {
		return nil, err
	}
	defer target.mu.Unlock()
	if _, err := target.store.Aisle(aisleNumber); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	customer := current.Clone()
	customer.MoveTo(models.StoreLocation{StoreID: storeID, AisleNumber: aisleNumber}, now)
	nextTarget := target.store.Clone()
	nextTarget.EnterCustomer(id, now)

	records := map[string]any{
		datastore.Key(datastore.PrefixCustomers, id):  customer,
		datastore.Key(datastore.PrefixStores, storeID): nextTarget,
	}

	// Only one goroutine holds two store locks at a time: the second lock is
	// taken under shopperMu, which every two-store path requires.
	var previous *storeEntry
	var nextPrevious *models.Store
	if current.Location != nil && current.Location.StoreID != storeID {
		prev, lockErr := s.lockStore(current.Location.StoreID)
		switch {
		case lockErr == nil:
			defer prev.mu.Unlock()
			previous = prev
			nextPrevious = prev.store.Clone()
			nextPrevious.LeaveCustomer(id)
			records[datastore.Key(datastore.PrefixStores, nextPrevious.ID)] = nextPrevious
		case !dErrors.HasCode(lockErr, dErrors.CodeNotFound):
			return nil, lockErr
		}
	}

	if err := s.persist(ctx, records); err != nil {
		return nil, err
	}
	s.customers[id] = customer
	target.store = nextTarget
	if nextPrevious != nil {
		previous.store = nextPrevious
	}

	s.logAudit(ctx, "customer_located", "customer_id", id, "store_id", storeID, "aisle", aisleNumber)
	return customer.Clone(), nil
}

// AssignCustomerBasket binds a basket to a customer. Both sides hold at most one partner.
func (s *Service) AssignCustomerBasket(ctx context.Context, customerID, basketID string) (_ *models.Basket, err error) {
	ctx, done := s.track(ctx, "assign customer basket",
		attribute.String("customer_id", customerID), attribute.String("basket_id", basketID))
	defer func() { err = done(err) }()

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()

	c, err := s.customerLocked(customerID)
	if err != nil {
		return nil, err
	}
	b, err := s.basketLocked(basketID)
	if err != nil {
		return nil, err
	}
	if err := b.CanAssign(customerID); err != nil {
		return nil, err
	}
	if c.BasketID != "" && c.BasketID != basketID {
		return nil, dErrors.New(dErrors.CodeInvalidState,
			"customer "+customerID+" already holds basket "+c.BasketID)
	}

	customer := c.Clone()
	customer.BasketID = basketID
	basket := b.Clone()
	basket.CustomerID = customerID
	if err := s.persist(ctx, map[string]any{
		datastore.Key(datastore.PrefixCustomers, customerID): customer,
		datastore.Key(datastore.PrefixBaskets, basketID):     basket,
	}); err != nil {
		return nil, err
	}
	s.customers[customerID] = customer
	s.baskets[basketID] = basket

	s.logAudit(ctx, "basket_assigned", "customer_id", customerID, "basket_id", basketID)
	return basket.Clone(), nil
}

// ProvisionBasket registers an empty, unassigned basket.
func (s *Service) ProvisionBasket(ctx context.Context, id string) (_ *models.Basket, err error) {
	ctx, done := s.track(ctx, "provision basket", attribute.String("basket_id", id))
	defer func() { err = done(err) }()

	b, err := models.NewBasket(id)
	if err != nil {
		return nil, err
	}

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()

	if _, exists := s.baskets[b.ID]; exists {
		return nil, dErrors.New(dErrors.CodeDuplicateEntity, "basket "+b.ID+" already exists")
	}
	if err := s.persist(ctx, map[string]any{datastore.Key(datastore.PrefixBaskets, b.ID): b}); err != nil {
		return nil, err
	}
	s.baskets[b.ID] = b
	s.logAudit(ctx, "basket_provisioned", "basket_id", b.ID)
	return b.Clone(), nil
}

// ShowBasket returns a snapshot of the basket and its line items.
func (s *Service) ShowBasket(ctx context.Context, id string) (_ *models.Basket, err error) {
	_, done := s.track(ctx, "show basket")
	defer func() { err = done(err) }()

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()
	b, err := s.basketLocked(id)
	if err != nil {
		return nil, err
	}
	return b.Clone(), nil
}

// AddBasketProduct moves quantity units of a product from the inventory in the
// customer's current aisle into the basket. Basket and inventory change together or not at all.
func (s *Service) AddBasketProduct(ctx context.Context, basketID, productID string, quantity int) (_ *models.Basket, err error) {
	ctx, done := s.track(ctx, "add basket product",
		attribute.String("basket_id", basketID), attribute.String("product_id", productID))
	defer func() { err = done(err) }()

	if quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()

	b, err := s.basketLocked(basketID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidState, "basket "+basketID+" is not assigned to a customer")
	}
	c, err := s.customerLocked(b.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := c.CanPurchase(); err != nil {
		return nil, err
	}
	if c.Location == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "customer "+c.ID+" is not in a store")
	}
	loc := *c.Location
	if err := b.CanDrawFrom(loc.StoreID); err != nil {
		return nil, err
	}
	if _, err := s.catalog.Get(productID); err != nil {
		return nil, err
	}

	e, err := s.lockStore(loc.StoreID)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	store := e.store.Clone()
	inv, err := store.InventoryForProduct(loc.AisleNumber, productID)
	if err != nil {
		return nil, err
	}
	if err := inv.Adjust(-quantity); err != nil {
		return nil, err
	}
	basket := b.Clone()
	if err := basket.AddItem(productID, inv.ID, loc.StoreID, quantity); err != nil {
		return nil, err
	}
	store.Baskets[basketID] = true
	store.UpdatedAt = requestcontext.Now(ctx)

	if err := s.persist(ctx, map[string]any{
		datastore.Key(datastore.PrefixStores, store.ID): store,
		datastore.Key(datastore.PrefixBaskets, basketID): basket,
	}); err != nil {
		return nil, err
	}
	e.store = store
	s.baskets[basketID] = basket

	if s.metrics != nil {
		s.metrics.AddBasketUnits("out", quantity)
	}
	s.logAudit(ctx, "basket_item_added",
		"basket_id", basketID,
		"customer_id", c.ID,
		"product_id", productID,
		"inventory_id", inv.ID,
		"quantity", quantity,
	)
	return basket.Clone(), nil
}

// RemoveBasketProduct returns quantity units of a product to the inventories
// they came from, most recently added first.
func (s *Service) RemoveBasketProduct(ctx context.Context, basketID, productID string, quantity int) (_ *models.Basket, err error) {
	ctx, done := s.track(ctx, "remove basket product",
		attribute.String("basket_id", basketID), attribute.String("product_id", productID))
	defer func() { err = done(err) }()

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()

	b, err := s.basketLocked(basketID)
	if err != nil {
		return nil, err
	}
	plan, err := b.PlanRemoval(productID, quantity)
	if err != nil {
		return nil, err
	}
	basket, err := s.returnStock(ctx, b, plan, func(next *models.Basket) {
		next.ApplyRemoval(productID, plan)
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "basket_item_removed", "basket_id", basketID, "product_id", productID, "quantity", quantity)
	return basket, nil
}

// ClearBasket returns every line item to its inventory and empties the basket.
func (s *Service) ClearBasket(ctx context.Context, basketID string) (_ *models.Basket, err error) {
	ctx, done := s.track(ctx, "clear basket", attribute.String("basket_id", basketID))
	defer func() { err = done(err) }()

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()

	b, err := s.basketLocked(basketID)
	if err != nil {
		return nil, err
	}
	if b.IsEmpty() {
		return b.Clone(), nil
	}
	basket, err := s.returnStock(ctx, b, b.PlanClear(), (*models.Basket).Clear)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "basket_cleared", "basket_id", basketID)
	return basket, nil
}

// DeleteBasket removes an empty basket and releases its customer.
func (s *Service) DeleteBasket(ctx context.Context, basketID string) (err error) {
	ctx, done := s.track(ctx, "delete basket", attribute.String("basket_id", basketID))
	defer func() { err = done(err) }()

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()

	b, err := s.basketLocked(basketID)
	if err != nil {
		return err
	}
	if !b.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidState, "basket "+basketID+" still holds items")
	}

	// Unassign first: an unassigned basket next to a basketless customer is a
	// valid state should the removal below fail.
	if b.CustomerID != "" {
		if c, ok := s.customers[b.CustomerID]; ok {
			customer := c.Clone()
			customer.BasketID = ""
			basket := b.Clone()
			basket.CustomerID = ""
			if err := s.persist(ctx, map[string]any{
				datastore.Key(datastore.PrefixCustomers, customer.ID): customer,
				datastore.Key(datastore.PrefixBaskets, basketID):      basket,
			}); err != nil {
				return err
			}
			s.customers[customer.ID] = customer
			s.baskets[basketID] = basket
		}
	}
	if err := s.ds.Remove(ctx, datastore.Key(datastore.PrefixBaskets, basketID)); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove basket")
	}
	delete(s.baskets, basketID)
	s.logAudit(ctx, "basket_deleted", "basket_id", basketID)
	return nil
}

// returnStock credits plan back to the inventories of the basket's store and
// applies change to a copy of the basket, committing both together.
// Callers hold shopperMu.
func (s *Service) returnStock(ctx context.Context, b *models.Basket, plan []models.Return, change func(*models.Basket)) (*models.Basket, error) {
	e, err := s.lockStore(b.StoreID)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	store := e.store.Clone()
	units := 0
	for _, r := range plan {
		inv, err := store.Inventory(r.InventoryID)
		if err != nil {
			return nil, err
		}
		if err := inv.Adjust(r.Quantity); err != nil {
			return nil, err
		}
		units += r.Quantity
	}
	basket := b.Clone()
	change(basket)
	if basket.IsEmpty() {
		delete(store.Baskets, basket.ID)
	}
	store.UpdatedAt = requestcontext.Now(ctx)

	if err := s.persist(ctx, map[string]any{
		datastore.Key(datastore.PrefixStores, store.ID): store,
		datastore.Key(datastore.PrefixBaskets, basket.ID): basket,
	}); err != nil {
		return nil, err
	}
	e.store = store
	s.baskets[basket.ID] = basket

	if s.metrics != nil {
		s.metrics.AddBasketUnits("in", units)
	}
	return basket.Clone(), nil
}

func (s *Service) customerLocked(id string) (*models.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "customer "+id+" not found")
	}
	return c, nil
}

func (s *Service) basketLocked(id string) (*models.Basket, error) {
	b, ok := s.baskets[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "basket "+id+" not found")
	}
	return b, nil
}
