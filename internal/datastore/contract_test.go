package datastore_test

import (
	"context"

	"github.com/stretchr/testify/suite"

	"smartstore/internal/datastore"
	"smartstore/pkg/platform/sentinel"
)

// ContractSuite exercises the DataStore contract. Backends embed it and set
// newStore in SetupTest.
type ContractSuite struct {
	suite.Suite
	ctx   context.Context
	store datastore.DataStore
}

func (s *ContractSuite) TestPutGetRemove() {
	s.Require().NoError(s.store.Put(s.ctx, "stores/store1", []byte(`{"id":"store1"}`)))

	got, err := s.store.Get(s.ctx, "stores/store1")
	s.Require().NoError(err)
	s.JSONEq(`{"id":"store1"}`, string(got))

	ok, err := s.store.ContainsKey(s.ctx, "stores/store1")
	s.Require().NoError(err)
	s.True(ok)

	s.Require().NoError(s.store.Remove(s.ctx, "stores/store1"))
	_, err = s.store.Get(s.ctx, "stores/store1")
	s.ErrorIs(err, sentinel.ErrNotFound)

	ok, err = s.store.ContainsKey(s.ctx, "stores/store1")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ContractSuite) TestPutOverwrites() {
	s.Require().NoError(s.store.Put(s.ctx, "users/a", []byte("1")))
	s.Require().NoError(s.store.Put(s.ctx, "users/a", []byte("2")))

	got, err := s.store.Get(s.ctx, "users/a")
	s.Require().NoError(err)
	s.Equal("2", string(got))
}

func (s *ContractSuite) TestPutAllAndKeys() {
	s.Require().NoError(s.store.PutAll(s.ctx, map[string][]byte{
		"stores/b":    []byte("b"),
		"stores/a":    []byte("a"),
		"baskets/b1":  []byte("x"),
		"customers/c": []byte("y"),
	}))

	keys, err := s.store.Keys(s.ctx, datastore.PrefixStores)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"stores/a", "stores/b"}, keys)

	n, err := s.store.Size(s.ctx)
	s.Require().NoError(err)
	s.Equal(4, n)
}

func (s *ContractSuite) TestClear() {
	s.Require().NoError(s.store.Put(s.ctx, "stores/a", []byte("a")))
	s.Require().NoError(s.store.Clear(s.ctx))

	n, err := s.store.Size(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}
