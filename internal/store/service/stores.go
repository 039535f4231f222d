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

// ProvisionStore registers a new store.
func (s *Service) ProvisionStore(ctx context.Context, id, name, address, description string) (_ *models.Store, err error) {
	ctx, done := s.track(ctx, "provision store", attribute.String("store_id", id))
	defer func() { err = done(err) }()

	st, err := models.NewStore(id, name, address, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	st.Description = description

	// The entry is inserted locked so nobody observes the store before it is persisted.
	e := &storeEntry{store: st}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.dirMu.Lock()
	if _, exists := s.stores[st.ID]; exists {
		s.dirMu.Unlock()
		return nil, dErrors.New(dErrors.CodeDuplicateEntity, "store "+st.ID+" already exists")
	}
	s.stores[st.ID] = e
	s.dirMu.Unlock()

	if err := s.persist(ctx, map[string]any{datastore.Key(datastore.PrefixStores, st.ID): st}); err != nil {
		e.deleted = true
		s.dirMu.Lock()
		delete(s.stores, st.ID)
		s.dirMu.Unlock()
		return nil, err
	}

	s.observeStoreCount()
	s.logAudit(ctx, "store_provisioned", "store_id", st.ID)
	return st.Clone(), nil
}

// ShowStore returns a copy of the store aggregate.
func (s *Service) ShowStore(ctx context.Context, id string) (_ *models.Store, err error) {
	_, done := s.track(ctx, "show store", attribute.String("store_id", id))
	defer func() { err = done(err) }()

	var out *models.Store
	err = s.readStore(id, func(st *models.Store) error {
		out = st.Clone()
		return nil
	})
	return out, err
}

// ListStores returns a summary of every store ordered by id.
func (s *Service) ListStores(ctx context.Context) []models.StoreSummary {
	s.dirMu.RLock()
	entries := make([]*storeEntry, 0, len(s.stores))
	for _, e := range s.stores {
		entries = append(entries, e)
	}
	s.dirMu.RUnlock()

	out := make([]models.StoreSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		if !e.deleted {
			out = append(out, e.store.Summary())
		}
		e.mu.RUnlock()
	}
	models.SortSummaries(out)
	return out
}

// UpdateStore changes the descriptive fields of a store. Empty values keep the current field.
func (s *Service) UpdateStore(ctx context.Context, id, name, address, description string) (_ *models.Store, err error) {
	ctx, done := s.track(ctx, "update store", attribute.String("store_id", id))
	defer func() { err = done(err) }()

	var out *models.Store
	err = s.mutateStore(ctx, id, func(st *models.Store) error {
		st.Update(name, address, description, requestcontext.Now(ctx))
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "store_updated", "store_id", id)
	return out.Clone(), nil
}

// DeleteStore removes a store with its aisles, inventories and devices.
// A store whose stock still sits in a basket cannot be deleted.
func (s *Service) DeleteStore(ctx context.Context, id string) (err error) {
	ctx, done := s.track(ctx, "delete store", attribute.String("store_id", id))
	defer func() { err = done(err) }()

	e, err := s.lockStore(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	if len(e.store.Baskets) > 0 {
		return dErrors.New(dErrors.CodeInvalidState, "store "+id+" has stock in open baskets")
	}
	if err := s.ds.Remove(ctx, datastore.Key(datastore.PrefixStores, id)); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove store")
	}
	e.deleted = true

	s.dirMu.Lock()
	delete(s.stores, id)
	s.dirMu.Unlock()

	s.idxMu.Lock()
	for invID := range e.store.Inventories {
		delete(s.inventoryAt, invID)
	}
	for devID := range e.store.Devices {
		delete(s.deviceAt, devID)
	}
	s.idxMu.Unlock()

	s.observeStoreCount()
	s.logAudit(ctx, "store_deleted", "store_id", id)
	return nil
}

// ProvisionAisle adds an aisle to a store.
func (s *Service) ProvisionAisle(ctx context.Context, storeID, number, name, description string, location models.AisleLocation) (_ *models.Aisle, err error) {
	ctx, done := s.track(ctx, "provision aisle",
		attribute.String("store_id", storeID), attribute.String("aisle", number))
	defer func() { err = done(err) }()

	var out *models.Aisle
	err = s.mutateStore(ctx, storeID, func(st *models.Store) error {
		a, err := st.AddAisle(number, name, description, location)
		if err != nil {
			return err
		}
		out = a.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "aisle_provisioned", "store_id", storeID, "aisle", out.Number)
	return out, nil
}

func (s *Service) ShowAisle(ctx context.Context, storeID, number string) (_ *models.Aisle, err error) {
	_, done := s.track(ctx, "show aisle")
	defer func() { err = done(err) }()

	var out *models.Aisle
	err = s.readStore(storeID, func(st *models.Store) error {
		a, err := st.Aisle(number)
		if err != nil {
			return err
		}
		out = a.Clone()
		return nil
	})
	return out, err
}

// ProvisionShelf adds a shelf to an aisle. Shelf levels are unique per aisle.
func (s *Service) ProvisionShelf(ctx context.Context, storeID, aisleNumber, shelfID, name string, level models.ShelfLevel, description string, temperature models.Temperature) (_ *models.Shelf, err error) {
	ctx, done := s.track(ctx, "provision shelf",
		attribute.String("store_id", storeID), attribute.String("shelf_id", shelfID))
	defer func() { err = done(err) }()

	var out *models.Shelf
	err = s.mutateStore(ctx, storeID, func(st *models.Store) error {
		a, err := st.Aisle(aisleNumber)
		if err != nil {
			return err
		}
		sh, err := a.AddShelf(shelfID, name, level, description, temperature)
		if err != nil {
			return err
		}
		out = sh.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "shelf_provisioned", "store_id", storeID, "aisle", aisleNumber, "shelf_id", out.ID)
	return out, nil
}

func (s *Service) ShowShelf(ctx context.Context, storeID, aisleNumber, shelfID string) (_ *models.Shelf, err error) {
	_, done := s.track(ctx, "show shelf")
	defer func() { err = done(err) }()

	var out *models.Shelf
	err = s.readStore(storeID, func(st *models.Store) error {
		sh, err := st.Shelf(aisleNumber, shelfID)
		if err != nil {
			return err
		}
		out = sh.Clone()
		return nil
	})
	return out, err
}

func (s *Service) observeStoreCount() {
	if s.metrics == nil {
		return
	}
	s.dirMu.RLock()
	n := len(s.stores)
	s.dirMu.RUnlock()
	s.metrics.SetStores(n)
}
