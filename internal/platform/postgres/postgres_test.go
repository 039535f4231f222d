package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"smartstore/internal/platform/config"
)

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), config.PostgresConfig{})
	assert.Error(t, err)
}
