package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"smartstore/internal/datastore"
	"smartstore/internal/datastore/mocks"
	"smartstore/internal/store/models"
	dErrors "smartstore/pkg/domain-errors"
)

func tacos(t *testing.T) *models.Product {
	t.Helper()
	p, err := models.NewProduct("prod1", "Tacos", "Beef Tacos", "3 pack", "Mexican Food", 12.99, models.TemperatureHot)
	require.NoError(t, err)
	return p
}

func TestProvisionAndGet(t *testing.T) {
	ctx := context.Background()
	c := New(datastore.NewInMemory())

	_, err := c.Provision(ctx, tacos(t))
	require.NoError(t, err)

	_, err = c.Provision(ctx, tacos(t))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicateEntity))

	got, err := c.Get("prod1")
	require.NoError(t, err)
	assert.Equal(t, models.TemperatureHot, got.Temperature)

	got.Temperature = models.TemperatureFrozen
	again, _ := c.Get("prod1")
	assert.Equal(t, models.TemperatureHot, again.Temperature, "Get returns a copy")

	_, err = c.Get("nope")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestLoadRestoresPersistedProducts(t *testing.T) {
	ctx := context.Background()
	ds := datastore.NewInMemory()
	_, err := New(ds).Provision(ctx, tacos(t))
	require.NoError(t, err)

	restored := New(ds)
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, 1, restored.Len())
	assert.Equal(t, "Tacos", restored.List()[0].Name)
}

func TestProvisionPersistFailureLeavesCatalogUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	ds := mocks.NewMockDataStore(ctrl)
	ds.EXPECT().Put(gomock.Any(), "products/prod1", gomock.Any()).Return(errors.New("disk full"))

	c := New(ds)
	_, err := c.Provision(context.Background(), tacos(t))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Zero(t, c.Len())
}
