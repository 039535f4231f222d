package datastore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"smartstore/internal/datastore"
	"smartstore/pkg/platform/sentinel"
)

type InMemorySuite struct {
	ContractSuite
}

func (s *InMemorySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = datastore.NewInMemory()
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func TestInMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := datastore.NewInMemory()

	value := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", value))
	value[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestInMemoryClosed(t *testing.T) {
	ctx := context.Background()
	store := datastore.NewInMemory()
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Put(ctx, "k", nil), sentinel.ErrClosed)
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, sentinel.ErrClosed)
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()
	store := datastore.NewInMemory()
	type rec struct {
		ID string `json:"id"`
	}
	for _, id := range []string{"a", "b"} {
		b, err := datastore.Encode(rec{ID: id})
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, datastore.Key(datastore.PrefixUsers, id), b))
	}

	var ids []string
	err := datastore.LoadAll(ctx, store, datastore.PrefixUsers, func(_ string, v []byte) error {
		var r rec
		if err := datastore.Decode(v, &r); err != nil {
			return err
		}
		ids = append(ids, r.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}
