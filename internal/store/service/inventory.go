package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"smartstore/internal/store/models"
)

// ProvisionProduct adds a product to the global catalog.
func (s *Service) ProvisionProduct(ctx context.Context, id, name, description, size, category string, price float64, temperature models.Temperature) (_ *models.Product, err error) {
	ctx, done := s.track(ctx, "provision product", attribute.String("product_id", id))
	defer func() { err = done(err) }()

	p, err := models.NewProduct(id, name, description, size, category, price, temperature)
	if err != nil {
		return nil, err
	}
	out, err := s.catalog.Provision(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "product_provisioned", "product_id", out.ID)
	return out, nil
}

func (s *Service) ShowProduct(ctx context.Context, id string) (_ *models.Product, err error) {
	_, done := s.track(ctx, "show product")
	defer func() { err = done(err) }()
	return s.catalog.Get(id)
}

func (s *Service) ListProducts(_ context.Context) []models.Product {
	return s.catalog.List()
}

// ProvisionInventory places stock of a catalog product on a shelf.
// Inventory ids are unique across the directory so UpdateInventory can find them by id alone.
func (s *Service) ProvisionInventory(ctx context.Context, id, storeID, aisleNumber, shelfID string, capacity, count int, productID string, invType models.InventoryType) (_ *models.Inventory, err error) {
	ctx, done := s.track(ctx, "provision inventory",
		attribute.String("inventory_id", id), attribute.String("store_id", storeID))
	defer func() { err = done(err) }()

	// Shelf resolution comes first so a missing store or shelf wins over a missing product.
	if err := s.readStore(storeID, func(st *models.Store) error {
		_, err := st.Shelf(aisleNumber, shelfID)
		return err
	}); err != nil {
		return nil, err
	}
	product, err := s.catalog.Get(productID)
	if err != nil {
		return nil, err
	}

	var (
		out     models.Inventory
		release func()
	)
	err = s.mutateStore(ctx, storeID, func(st *models.Store) error {
		inv, err := st.AddInventory(id, aisleNumber, shelfID, capacity, count, product, invType)
		if err != nil {
			return err
		}
		if release, err = s.reserve(s.inventoryAt, "inventory", inv.ID, storeID); err != nil {
			return err
		}
		out = *inv
		return nil
	})
	if err != nil {
		if release != nil {
			release()
		}
		return nil, err
	}
	s.logAudit(ctx, "inventory_provisioned",
		"store_id", storeID,
		"inventory_id", out.ID,
		"product_id", productID,
		"count", count,
		"capacity", capacity,
	)
	return &out, nil
}

// UpdateInventory applies delta to the inventory count, keeping 0 <= count <= capacity.
func (s *Service) UpdateInventory(ctx context.Context, id string, delta int) (_ *models.Inventory, err error) {
	ctx, done := s.track(ctx, "update inventory", attribute.String("inventory_id", id))
	defer func() { err = done(err) }()

	storeID, err := s.lookup(s.inventoryAt, "inventory", id)
	if err != nil {
		return nil, err
	}
	var out models.Inventory
	err = s.mutateStore(ctx, storeID, func(st *models.Store) error {
		inv, err := st.Inventory(id)
		if err != nil {
			return err
		}
		if err := inv.Adjust(delta); err != nil {
			return err
		}
		out = *inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "inventory_updated", "inventory_id", id, "delta", delta, "count", out.Count)
	return &out, nil
}

func (s *Service) ShowInventory(ctx context.Context, id string) (_ *models.Inventory, err error) {
	_, done := s.track(ctx, "show inventory")
	defer func() { err = done(err) }()

	storeID, err := s.lookup(s.inventoryAt, "inventory", id)
	if err != nil {
		return nil, err
	}
	var out models.Inventory
	err = s.readStore(storeID, func(st *models.Store) error {
		inv, err := st.Inventory(id)
		if err != nil {
			return err
		}
		out = *inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
