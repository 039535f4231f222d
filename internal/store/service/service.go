// Package service is the store directory: the single entry point for every
// store, aisle, shelf, inventory, customer, basket and device operation.
//
// Locking: each store has its own RWMutex held for the whole check-then-act
// section of an operation. Customers and baskets live in the shopper registry
// guarded by shopperMu. The directory map and the global id indexes are leaf
// locks held only for map access. Order: shopperMu, then store locks, then
// leaves. The catalog lock is never held while a store lock is acquired.
//
// Mutations run on a clone of the aggregate, are persisted, and only then
// swapped in, so a failed call leaves the in-memory state untouched. A
// swapped-in aggregate is never modified afterwards.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"smartstore/internal/datastore"
	"smartstore/internal/events"
	"smartstore/internal/store/catalog"
	"smartstore/internal/store/metrics"
	"smartstore/internal/store/models"
	dErrors "smartstore/pkg/domain-errors"
	"smartstore/pkg/requestcontext"
)

const tracerName = "smartstore/store"

type storeEntry struct {
	mu      sync.RWMutex
	store   *models.Store
	deleted bool
}

// Service orchestrates the store engine.
type Service struct {
	ds      datastore.DataStore
	catalog *catalog.Catalog

	shopperMu sync.Mutex
	customers map[string]*models.Customer
	baskets   map[string]*models.Basket

	dirMu  sync.RWMutex
	stores map[string]*storeEntry

	idxMu       sync.RWMutex
	inventoryAt map[string]string
	deviceAt    map[string]string

	devices map[models.DeviceKind]deviceHandler

	logger  *slog.Logger
	metrics *metrics.Metrics
	queue   *events.Queue
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithEventQueue routes device events and commands into q.
func WithEventQueue(q *events.Queue) Option {
	return func(s *Service) {
		s.queue = q
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service persisting into ds. Products are delegated to cat.
func New(ds datastore.DataStore, cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		ds:          ds,
		catalog:     cat,
		customers:   make(map[string]*models.Customer),
		baskets:     make(map[string]*models.Basket),
		stores:      make(map[string]*storeEntry),
		inventoryAt: make(map[string]string),
		deviceAt:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.devices = map[models.DeviceKind]deviceHandler{
		models.DeviceKindSensor:    sensorHandler{s},
		models.DeviceKindAppliance: applianceHandler{s},
	}
	return s
}

// Load replaces the in-memory state with what the data store holds.
// Call once at startup before serving requests.
func (s *Service) Load(ctx context.Context) error {
	if err := s.catalog.Load(ctx); err != nil {
		return err
	}

	stores := make(map[string]*storeEntry)
	inventoryAt := make(map[string]string)
	deviceAt := make(map[string]string)
	err := datastore.LoadAll(ctx, s.ds, datastore.PrefixStores, func(key string, value []byte) error {
		var st models.Store
		if err := datastore.Decode(value, &st); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		st.EnsureMaps()
		for id := range st.Inventories {
			inventoryAt[id] = st.ID
		}
		for id := range st.Devices {
			deviceAt[id] = st.ID
		}
		stores[st.ID] = &storeEntry{store: &st}
		return nil
	})
	if err != nil {
		return fmt.Errorf("load stores: %w", err)
	}

	customers := make(map[string]*models.Customer)
	err = datastore.LoadAll(ctx, s.ds, datastore.PrefixCustomers, func(key string, value []byte) error {
		var c models.Customer
		if err := datastore.Decode(value, &c); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		customers[c.ID] = &c
		return nil
	})
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}

	baskets := make(map[string]*models.Basket)
	err = datastore.LoadAll(ctx, s.ds, datastore.PrefixBaskets, func(key string, value []byte) error {
		var b models.Basket
		if err := datastore.Decode(value, &b); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if b.Items == nil {
			b.Items = []models.LineItem{}
		}
		baskets[b.ID] = &b
		return nil
	})
	if err != nil {
		return fmt.Errorf("load baskets: %w", err)
	}

	s.shopperMu.Lock()
	defer s.shopperMu.Unlock()
	s.customers = customers
	s.baskets = baskets

	s.dirMu.Lock()
	s.stores = stores
	s.dirMu.Unlock()

	s.idxMu.Lock()
	s.inventoryAt = inventoryAt
	s.deviceAt = deviceAt
	s.idxMu.Unlock()

	if s.metrics != nil {
		s.metrics.SetStores(len(stores))
	}
	s.logger.InfoContext(ctx, "store directory loaded",
		"stores", len(stores),
		"customers", len(customers),
		"baskets", len(baskets),
		"products", s.catalog.Len(),
	)
	return nil
}

// track opens a span for action and returns the function that finishes it.
// The finisher attaches the action to the error and records the outcome.
func (s *Service) track(ctx context.Context, action string, attrs ...attribute.KeyValue) (context.Context, func(error) error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "store."+strings.ReplaceAll(action, " ", "_"),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error) error {
		err = dErrors.WithAction(err, action)
		code := "ok"
		if err != nil {
			code = string(dErrors.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, code)
		}
		if s.metrics != nil {
			s.metrics.ObserveOperation(action, code, start)
		}
		span.End()
		return err
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if session := requestcontext.Session(ctx); session != "" {
		attributes = append(attributes, "session", session)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

// entry returns the directory entry for id without locking it.
func (s *Service) entry(id string) (*storeEntry, error) {
	s.dirMu.RLock()
	e, ok := s.stores[id]
	s.dirMu.RUnlock()
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "store "+id+" not found")
	}
	return e, nil
}

// lockStore returns the entry for id write-locked. The caller unlocks.
func (s *Service) lockStore(id string) (*storeEntry, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeNotFound, "store "+id+" not found")
	}
	return e, nil
}

// readStore runs fn on the live store under its read lock. fn must copy
// anything it hands out.
func (s *Service) readStore(id string, fn func(st *models.Store) error) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.deleted {
		return dErrors.New(dErrors.CodeNotFound, "store "+id+" not found")
	}
	return fn(e.store)
}

// mutateStore applies fn to a clone of the store, persists the clone and swaps it in.
func (s *Service) mutateStore(ctx context.Context, id string, fn func(st *models.Store) error) error {
	e, err := s.lockStore(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	next := e.store.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.UpdatedAt = requestcontext.Now(ctx)
	if err := s.persist(ctx, map[string]any{datastore.Key(datastore.PrefixStores, id): next}); err != nil {
		return err
	}
	e.store = next
	return nil
}

// persist encodes and writes records. Several records are written atomically.
func (s *Service) persist(ctx context.Context, records map[string]any) error {
	batch := make(map[string][]byte, len(records))
	for key, v := range records {
		b, err := datastore.Encode(v)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode "+key)
		}
		batch[key] = b
	}
	var err error
	if len(batch) == 1 {
		for key, b := range batch {
			err = s.ds.Put(ctx, key, b)
		}
	} else {
		err = s.ds.PutAll(ctx, batch)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist changes")
	}
	return nil
}

// reserve claims id in index for storeID. Returns a release func for rollback.
func (s *Service) reserve(index map[string]string, kind, id, storeID string) (func(), error) {
	s.idxMu.Lock()
	defer s.idxMu.Unlock()
	if owner, taken := index[id]; taken {
		return nil, dErrors.New(dErrors.CodeDuplicateEntity, kind+" "+id+" already exists in store "+owner)
	}
	index[id] = storeID
	return func() {
		s.idxMu.Lock()
		delete(index, id)
		s.idxMu.Unlock()
	}, nil
}

func (s *Service) lookup(index map[string]string, kind, id string) (string, error) {
	s.idxMu.RLock()
	defer s.idxMu.RUnlock()
	storeID, ok := index[id]
	if !ok {
		return "", dErrors.New(dErrors.CodeNotFound, kind+" "+id+" not found")
	}
	return storeID, nil
}
