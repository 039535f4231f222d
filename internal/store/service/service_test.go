package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"smartstore/internal/datastore"
	"smartstore/internal/datastore/mocks"
	"smartstore/internal/events"
	"smartstore/internal/store/catalog"
	"smartstore/internal/store/metrics"
	"smartstore/internal/store/models"
	dErrors "smartstore/pkg/domain-errors"
)

func newService(ds datastore.DataStore, opts ...Option) *Service {
	opts = append([]Option{WithMetrics(metrics.New(prometheus.NewRegistry()))}, opts...)
	return New(ds, catalog.New(ds), opts...)
}

// seed builds store1 with aisle1, an ambient high shelf S1, product prod1 and
// inventory inv1 (50 of 100), plus registered customer cust1 standing in
// aisle1 with basket1.
func seed(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.ProvisionStore(ctx, "store1", "Main Street", "1 Main St", "")
	require.NoError(t, err)
	_, err = svc.ProvisionAisle(ctx, "store1", "aisle1", "Snacks", "chips and such", models.AisleLocationFloor)
	require.NoError(t, err)
	_, err = svc.ProvisionShelf(ctx, "store1", "aisle1", "S1", "Top", models.ShelfLevelHigh, "top shelf", models.TemperatureAmbient)
	require.NoError(t, err)
	_, err = svc.ProvisionProduct(ctx, "prod1", "Chips", "Salted chips", "200g", "Snacks", 2.49, models.TemperatureAmbient)
	require.NoError(t, err)
	_, err = svc.ProvisionInventory(ctx, "inv1", "store1", "aisle1", "S1", 100, 50, "prod1", models.InventoryTypeStandard)
	require.NoError(t, err)
	_, err = svc.ProvisionCustomer(ctx, "cust1", "Ada", "Lovelace", models.CustomerTypeRegistered, "ada@example.com", "ada-wallet", "")
	require.NoError(t, err)
	_, err = svc.UpdateCustomer(ctx, "cust1", "store1", "aisle1")
	require.NoError(t, err)
	_, err = svc.ProvisionBasket(ctx, "basket1")
	require.NoError(t, err)
	_, err = svc.AssignCustomerBasket(ctx, "cust1", "basket1")
	require.NoError(t, err)
}

type ServiceSuite struct {
	suite.Suite
	ctx   context.Context
	ds    *datastore.InMemory
	queue *events.Queue
	svc   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ds = datastore.NewInMemory()
	s.queue = events.NewQueue(16)
	s.svc = newService(s.ds, WithEventQueue(s.queue))
	seed(s.T(), s.svc)
}

func (s *ServiceSuite) count(id string) int {
	inv, err := s.svc.ShowInventory(s.ctx, id)
	s.Require().NoError(err)
	return inv.Count
}

func (s *ServiceSuite) TestUpdateInventory() {
	s.Run("applies delta", func() {
		inv, err := s.svc.UpdateInventory(s.ctx, "inv1", 10)
		s.Require().NoError(err)
		s.Equal(60, inv.Count)
		s.Equal(60, s.count("inv1"))
	})

	s.Run("rejects negative result", func() {
		_, err := s.svc.UpdateInventory(s.ctx, "inv1", -61)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Equal("update inventory", dErrors.ActionOf(err))
		s.Equal(60, s.count("inv1"))
	})

	s.Run("rejects exceeding capacity", func() {
		_, err := s.svc.UpdateInventory(s.ctx, "inv1", 41)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Equal(60, s.count("inv1"))
	})

	s.Run("unknown inventory", func() {
		_, err := s.svc.UpdateInventory(s.ctx, "nope", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestShelfLevelsUniquePerAisle() {
	_, err := s.svc.ProvisionShelf(s.ctx, "store1", "aisle1", "S2", "Also top", models.ShelfLevelHigh, "", models.TemperatureAmbient)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	_, err = s.svc.ProvisionShelf(s.ctx, "store1", "aisle1", "S3", "Middle", models.ShelfLevelMedium, "", models.TemperatureAmbient)
	s.NoError(err)

	_, err = s.svc.ProvisionShelf(s.ctx, "store1", "aisle1", "S1", "Again", models.ShelfLevelLow, "", models.TemperatureAmbient)
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateEntity))

	aisle, err := s.svc.ShowAisle(s.ctx, "store1", "aisle1")
	s.Require().NoError(err)
	s.Len(aisle.Shelves, 2)
}

func (s *ServiceSuite) TestBasketRoundTrip() {
	b, err := s.svc.AddBasketProduct(s.ctx, "basket1", "prod1", 2)
	s.Require().NoError(err)
	s.Equal(2, b.Quantity("prod1"))
	s.Equal("store1", b.StoreID)
	s.Equal(48, s.count("inv1"))

	st, err := s.svc.ShowStore(s.ctx, "store1")
	s.Require().NoError(err)
	s.True(st.Baskets["basket1"])

	b, err = s.svc.RemoveBasketProduct(s.ctx, "basket1", "prod1", 2)
	s.Require().NoError(err)
	s.True(b.IsEmpty())
	s.Equal(50, s.count("inv1"))

	st, err = s.svc.ShowStore(s.ctx, "store1")
	s.Require().NoError(err)
	s.NotContains(st.Baskets, "basket1")
}

func (s *ServiceSuite) TestAddBasketProductFailuresLeaveStateUnchanged() {
	s.Run("insufficient stock", func() {
		_, err := s.svc.AddBasketProduct(s.ctx, "basket1", "prod1", 51)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Equal(50, s.count("inv1"))
		b, _ := s.svc.ShowBasket(s.ctx, "basket1")
		s.True(b.IsEmpty())
	})

	s.Run("unknown product", func() {
		_, err := s.svc.AddBasketProduct(s.ctx, "basket1", "ghost", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("product not stocked in aisle", func() {
		_, err := s.svc.ProvisionProduct(s.ctx, "prod2", "Soda", "", "", "Drinks", 1, models.TemperatureAmbient)
		s.Require().NoError(err)
		_, err = s.svc.AddBasketProduct(s.ctx, "basket1", "prod2", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unassigned basket", func() {
		_, err := s.svc.ProvisionBasket(s.ctx, "loose")
		s.Require().NoError(err)
		_, err = s.svc.AddBasketProduct(s.ctx, "loose", "prod1", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("non-positive quantity", func() {
		_, err := s.svc.AddBasketProduct(s.ctx, "basket1", "prod1", 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestTemperatureMismatch() {
	_, err := s.svc.ProvisionShelf(s.ctx, "store1", "aisle1", "F1", "Freezer", models.ShelfLevelLow, "", models.TemperatureFrozen)
	s.Require().NoError(err)

	_, err = s.svc.ProvisionInventory(s.ctx, "inv2", "store1", "aisle1", "F1", 10, 5, "prod1", models.InventoryTypeStandard)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	// The rejected id is free for a valid placement.
	_, err = s.svc.ProvisionShelf(s.ctx, "store1", "aisle1", "S2", "Middle", models.ShelfLevelMedium, "", models.TemperatureAmbient)
	s.Require().NoError(err)
	_, err = s.svc.ProvisionInventory(s.ctx, "inv2", "store1", "aisle1", "S2", 10, 5, "prod1", models.InventoryTypeStandard)
	s.NoError(err)
}

func (s *ServiceSuite) TestProvisionInventoryChecks() {
	s.Run("count above capacity", func() {
		_, err := s.svc.ProvisionInventory(s.ctx, "inv9", "store1", "aisle1", "S1", 5, 6, "prod1", models.InventoryTypeStandard)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
	s.Run("missing shelf", func() {
		_, err := s.svc.ProvisionInventory(s.ctx, "inv9", "store1", "aisle1", "nope", 5, 1, "prod1", models.InventoryTypeStandard)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("missing product", func() {
		_, err := s.svc.ProvisionInventory(s.ctx, "inv9", "store1", "aisle1", "S1", 5, 1, "ghost", models.InventoryTypeStandard)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("duplicate id in another store", func() {
		_, err := s.svc.ProvisionStore(s.ctx, "store2", "Second", "2 Main St", "")
		s.Require().NoError(err)
		_, err = s.svc.ProvisionAisle(s.ctx, "store2", "a", "", "", models.AisleLocationStoreRoom)
		s.Require().NoError(err)
		_, err = s.svc.ProvisionShelf(s.ctx, "store2", "a", "s", "", models.ShelfLevelLow, "", models.TemperatureAmbient)
		s.Require().NoError(err)
		_, err = s.svc.ProvisionInventory(s.ctx, "inv1", "store2", "a", "s", 5, 1, "prod1", models.InventoryTypeStandard)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateEntity))
	})
}

func (s *ServiceSuite) TestGuestMayNotPurchase() {
	_, err := s.svc.ProvisionCustomer(s.ctx, "guest1", "Gus", "Guest", models.CustomerTypeGuest, "", "", "")
	s.Require().NoError(err)
	_, err = s.svc.UpdateCustomer(s.ctx, "guest1", "store1", "aisle1")
	s.Require().NoError(err)
	_, err = s.svc.ProvisionBasket(s.ctx, "basket2")
	s.Require().NoError(err)
	_, err = s.svc.AssignCustomerBasket(s.ctx, "guest1", "basket2")
	s.Require().NoError(err)

	_, err = s.svc.AddBasketProduct(s.ctx, "basket2", "prod1", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.Equal(50, s.count("inv1"))
}

func (s *ServiceSuite) TestDuplicateStoreLeavesOriginal() {
	_, err := s.svc.ProvisionStore(s.ctx, "store1", "Impostor", "elsewhere", "")
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateEntity))

	st, err := s.svc.ShowStore(s.ctx, "store1")
	s.Require().NoError(err)
	s.Equal("Main Street", st.Name)
	s.Len(st.Aisles, 1)
}

func (s *ServiceSuite) TestStoreLifecycle() {
	st, err := s.svc.UpdateStore(s.ctx, "store1", "Main Street Market", "", "open late")
	s.Require().NoError(err)
	s.Equal("Main Street Market", st.Name)
	s.Equal("1 Main St", st.Address)

	list := s.svc.ListStores(s.ctx)
	s.Require().Len(list, 1)
	s.Equal(1, list[0].AisleCount)

	_, err = s.svc.UpdateStore(s.ctx, "ghost", "x", "", "")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.True(dErrors.HasCode(s.svc.DeleteStore(s.ctx, "ghost"), dErrors.CodeNotFound))

	s.Require().NoError(s.svc.DeleteStore(s.ctx, "store1"))
	_, err = s.svc.ShowStore(s.ctx, "store1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.svc.ShowInventory(s.ctx, "inv1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	ok, err := s.ds.ContainsKey(s.ctx, "stores/store1")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ServiceSuite) TestDeleteStoreWithOpenBasket() {
	_, err := s.svc.AddBasketProduct(s.ctx, "basket1", "prod1", 1)
	s.Require().NoError(err)

	err = s.svc.DeleteStore(s.ctx, "store1")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	_, err = s.svc.ClearBasket(s.ctx, "basket1")
	s.Require().NoError(err)
	s.NoError(s.svc.DeleteStore(s.ctx, "store1"))
}

func (s *ServiceSuite) TestCustomerMovesBetweenStores() {
	_, err := s.svc.ProvisionStore(s.ctx, "store2", "Second", "2 Main St", "")
	s.Require().NoError(err)
	_, err = s.svc.ProvisionAisle(s.ctx, "store2", "1", "Front", "", models.AisleLocationFloor)
	s.Require().NoError(err)

	c, err := s.svc.UpdateCustomer(s.ctx, "cust1", "store2", "1")
	s.Require().NoError(err)
	s.Equal(models.StoreLocation{StoreID: "store2", AisleNumber: "1"}, *c.Location)

	first, _ := s.svc.ShowStore(s.ctx, "store1")
	second, _ := s.svc.ShowStore(s.ctx, "store2")
	s.NotContains(first.Customers, "cust1")
	s.Contains(second.Customers, "cust1")

	_, err = s.svc.UpdateCustomer(s.ctx, "cust1", "store2", "99")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.svc.UpdateCustomer(s.ctx, "ghost", "store2", "1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestBasketAssignment() {
	_, err := s.svc.ProvisionCustomer(s.ctx, "cust2", "Grace", "Hopper", models.CustomerTypeRegistered, "", "", models.AgeGroupAdult)
	s.Require().NoError(err)

	_, err = s.svc.AssignCustomerBasket(s.ctx, "cust2", "basket1")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState), "basket belongs to cust1")

	_, err = s.svc.ProvisionBasket(s.ctx, "basket2")
	s.Require().NoError(err)
	_, err = s.svc.AssignCustomerBasket(s.ctx, "cust1", "basket2")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState), "cust1 already holds basket1")

	_, err = s.svc.AssignCustomerBasket(s.ctx, "cust1", "basket1")
	s.NoError(err, "reassigning the same pair is a no-op")

	_, err = s.svc.ProvisionBasket(s.ctx, "basket1")
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateEntity))
}

func (s *ServiceSuite) TestRemoveAndClearBasket() {
	_, err := s.svc.AddBasketProduct(s.ctx, "basket1", "prod1", 5)
	s.Require().NoError(err)

	_, err = s.svc.RemoveBasketProduct(s.ctx, "basket1", "prod1", 6)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	_, err = s.svc.RemoveBasketProduct(s.ctx, "basket1", "ghost", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	b, err := s.svc.RemoveBasketProduct(s.ctx, "basket1", "prod1", 2)
	s.Require().NoError(err)
	s.Equal(3, b.Quantity("prod1"))
	s.Equal(47, s.count("inv1"))

	s.True(dErrors.HasCode(s.svc.DeleteBasket(s.ctx, "basket1"), dErrors.CodeInvalidState))

	b, err = s.svc.ClearBasket(s.ctx, "basket1")
	s.Require().NoError(err)
	s.True(b.IsEmpty())
	s.Equal(50, s.count("inv1"))

	s.Require().NoError(s.svc.DeleteBasket(s.ctx, "basket1"))
	c, err := s.svc.ShowCustomer(s.ctx, "cust1")
	s.Require().NoError(err)
	s.Empty(c.BasketID)
	_, err = s.svc.ShowBasket(s.ctx, "basket1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRemoveRejectedWhenInventoryRefilled() {
	_, err := s.svc.AddBasketProduct(s.ctx, "basket1", "prod1", 5)
	s.Require().NoError(err)
	_, err = s.svc.UpdateInventory(s.ctx, "inv1", 55)
	s.Require().NoError(err)

	_, err = s.svc.RemoveBasketProduct(s.ctx, "basket1", "prod1", 5)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	b, _ := s.svc.ShowBasket(s.ctx, "basket1")
	s.Equal(5, b.Quantity("prod1"))
	s.Equal(100, s.count("inv1"))
}

func (s *ServiceSuite) TestShowReturnsCopies() {
	st, err := s.svc.ShowStore(s.ctx, "store1")
	s.Require().NoError(err)
	st.Name = "mutated"
	delete(st.Aisles, "aisle1")

	again, err := s.svc.ShowStore(s.ctx, "store1")
	s.Require().NoError(err)
	s.Equal("Main Street", again.Name)
	s.Contains(again.Aisles, "aisle1")

	b, err := s.svc.AddBasketProduct(s.ctx, "basket1", "prod1", 1)
	s.Require().NoError(err)
	b.Items[0].Quantity = 40
	fresh, _ := s.svc.ShowBasket(s.ctx, "basket1")
	s.Equal(1, fresh.Items[0].Quantity)
}

func (s *ServiceSuite) TestDevices() {
	_, err := s.svc.ProvisionDevice(s.ctx, "cam1", "Door camera", "camera", "store1", "aisle1")
	s.Require().NoError(err)
	robot, err := s.svc.ProvisionDevice(s.ctx, "bot1", "Shelf robot", "robot", "store1", "aisle1")
	s.Require().NoError(err)
	s.Equal(models.DeviceKindAppliance, robot.Kind)

	_, err = s.svc.ProvisionDevice(s.ctx, "cam1", "Again", "camera", "store1", "aisle1")
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateEntity))
	_, err = s.svc.ProvisionDevice(s.ctx, "toaster", "Toaster", "toaster", "store1", "aisle1")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = s.svc.ProvisionDevice(s.ctx, "cam2", "Lost", "camera", "store1", "aisle42")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.NoError(s.svc.RaiseEvent(s.ctx, "cam1", "customer_seen"))
	s.NoError(s.svc.RaiseEvent(s.ctx, "bot1", "whatever_new_event"))
	s.True(dErrors.HasCode(s.svc.IssueCommand(s.ctx, "cam1", "pan_left"), dErrors.CodeInvalidState))
	s.NoError(s.svc.IssueCommand(s.ctx, "bot1", "restock aisle1"))
	s.True(dErrors.HasCode(s.svc.RaiseEvent(s.ctx, "ghost", "x"), dErrors.CodeNotFound))

	s.Equal(3, s.queue.Len(), "two events and one command are queued")

	list, err := s.svc.ListDevices(s.ctx, "store1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("bot1", list[0].ID)
}

func (s *ServiceSuite) TestLoadRestoresState() {
	_, err := s.svc.AddBasketProduct(s.ctx, "basket1", "prod1", 3)
	s.Require().NoError(err)
	_, err = s.svc.ProvisionDevice(s.ctx, "spk1", "Speaker", "speaker", "store1", "aisle1")
	s.Require().NoError(err)

	restored := newService(s.ds)
	s.Require().NoError(restored.Load(s.ctx))

	inv, err := restored.ShowInventory(s.ctx, "inv1")
	s.Require().NoError(err)
	s.Equal(47, inv.Count)
	b, err := restored.ShowBasket(s.ctx, "basket1")
	s.Require().NoError(err)
	s.Equal(3, b.Quantity("prod1"))
	s.NoError(restored.IssueCommand(s.ctx, "spk1", "play chime"))
	p, err := restored.ShowProduct(s.ctx, "prod1")
	s.Require().NoError(err)
	s.Equal("Chips", p.Name)
}

func TestConcurrentInventoryUpdatesRespectBounds(t *testing.T) {
	svc := newService(datastore.NewInMemory())
	seed(t, svc)
	ctx := context.Background()

	var ok atomic.Int32
	var wg sync.WaitGroup
	for range 80 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.UpdateInventory(ctx, "inv1", -1); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	inv, err := svc.ShowInventory(ctx, "inv1")
	require.NoError(t, err)
	assert.Equal(t, int32(50), ok.Load())
	assert.Equal(t, 0, inv.Count)
}

func TestConcurrentShoppersDrainInventoryExactly(t *testing.T) {
	svc := newService(datastore.NewInMemory())
	seed(t, svc)
	ctx := context.Background()

	const shoppers = 20
	for i := range shoppers {
		id := string(rune('a' + i))
		_, err := svc.ProvisionCustomer(ctx, "c"+id, "C", id, models.CustomerTypeRegistered, "", "", "")
		require.NoError(t, err)
		_, err = svc.UpdateCustomer(ctx, "c"+id, "store1", "aisle1")
		require.NoError(t, err)
		_, err = svc.ProvisionBasket(ctx, "b"+id)
		require.NoError(t, err)
		_, err = svc.AssignCustomerBasket(ctx, "c"+id, "b"+id)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	var taken atomic.Int32
	for i := range shoppers {
		wg.Add(1)
		go func(basketID string) {
			defer wg.Done()
			for range 5 {
				if _, err := svc.AddBasketProduct(ctx, basketID, "prod1", 1); err == nil {
					taken.Add(1)
				}
			}
		}("b" + string(rune('a'+i)))
	}
	// Readers run alongside the writers.
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				_, _ = svc.ShowStore(ctx, "store1")
				_ = svc.ListStores(ctx)
			}
		}()
	}
	wg.Wait()

	inv, err := svc.ShowInventory(ctx, "inv1")
	require.NoError(t, err)
	assert.Equal(t, int32(50), taken.Load())
	assert.Equal(t, 0, inv.Count)
}

func TestPersistenceFailureLeavesAggregateUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	ds := mocks.NewMockDataStore(ctrl)
	mem := datastore.NewInMemory()
	boom := errors.New("connection reset")
	var failWrites atomic.Bool

	ds.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, key string, value []byte) error {
			if failWrites.Load() {
				return boom
			}
			return mem.Put(ctx, key, value)
		}).AnyTimes()
	ds.EXPECT().PutAll(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, entries map[string][]byte) error {
			if failWrites.Load() {
				return boom
			}
			return mem.PutAll(ctx, entries)
		}).AnyTimes()

	svc := newService(ds)
	seed(t, svc)
	ctx := context.Background()
	failWrites.Store(true)

	_, err := svc.AddBasketProduct(ctx, "basket1", "prod1", 2)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Equal(t, "add basket product", dErrors.ActionOf(err))
	assert.ErrorIs(t, err, boom)

	_, err = svc.UpdateInventory(ctx, "inv1", 5)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = svc.ProvisionStore(ctx, "store9", "Nine", "9 Main St", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = svc.ProvisionInventory(ctx, "inv2", "store1", "aisle1", "S1", 10, 1, "prod1", models.InventoryTypeStandard)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	failWrites.Store(false)

	inv, err := svc.ShowInventory(ctx, "inv1")
	require.NoError(t, err)
	assert.Equal(t, 50, inv.Count)
	b, err := svc.ShowBasket(ctx, "basket1")
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
	_, err = svc.ShowStore(ctx, "store9")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	// Ids from failed provisions are not left reserved.
	_, err = svc.ProvisionStore(ctx, "store9", "Nine", "9 Main St", "")
	assert.NoError(t, err)
	_, err = svc.ProvisionInventory(ctx, "inv2", "store1", "aisle1", "S1", 10, 1, "prod1", models.InventoryTypeStandard)
	assert.NoError(t, err)
}

func (s *ServiceSuite) TestProvisionedIdsAreTrimmed() {
	b, err := s.svc.ProvisionBasket(s.ctx, " basket2 ")
	s.Require().NoError(err)
	s.Equal("basket2", b.ID)
	_, err = s.svc.ShowBasket(s.ctx, "basket2")
	s.NoError(err)
	_, err = s.svc.ProvisionBasket(s.ctx, "basket2")
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateEntity))

	d, err := s.svc.ProvisionDevice(s.ctx, " cam1 ", "Door camera", "camera", "store1", "aisle1")
	s.Require().NoError(err)
	s.Equal("cam1", d.ID)
	s.NoError(s.svc.RaiseEvent(s.ctx, "cam1", "customer_seen"))

	inv, err := s.svc.ProvisionInventory(s.ctx, " inv2 ", "store1", "aisle1", "S1", 10, 5, "prod1", models.InventoryTypeStandard)
	s.Require().NoError(err)
	s.Equal("inv2", inv.ID)
	s.Equal(5, s.count("inv2"))

	a, err := s.svc.ProvisionAisle(s.ctx, "store1", " aisle2 ", "Dairy", "cold", models.AisleLocationFloor)
	s.Require().NoError(err)
	s.Equal("aisle2", a.Number)
	sh, err := s.svc.ProvisionShelf(s.ctx, "store1", "aisle2", " S9 ", "Low", models.ShelfLevelLow, "", models.TemperatureAmbient)
	s.Require().NoError(err)
	s.Equal("S9", sh.ID)
	_, err = s.svc.ShowShelf(s.ctx, "store1", "aisle2", "S9")
	s.NoError(err)
}
