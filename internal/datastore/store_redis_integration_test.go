//go:build integration

package datastore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"smartstore/internal/datastore"
	"smartstore/pkg/testutil/containers"
)

type RedisSuite struct {
	ContractSuite
	redis *containers.RedisContainer
}

func TestRedisSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSuite))
}

func (s *RedisSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.store = datastore.NewRedis(s.redis.Client, datastore.WithNamespace("test:"))
}

func (s *RedisSuite) TestClearLeavesForeignKeys() {
	s.Require().NoError(s.redis.Client.Set(s.ctx, "other:key", "v", 0).Err())
	s.Require().NoError(s.store.Put(s.ctx, "stores/a", []byte("a")))
	s.Require().NoError(s.store.Clear(s.ctx))

	n, err := s.redis.Client.Exists(s.ctx, "other:key").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}
