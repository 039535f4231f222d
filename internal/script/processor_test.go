package script

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstore/internal/datastore"
	"smartstore/internal/store/catalog"
	"smartstore/internal/store/models"
	"smartstore/internal/store/service"
	dErrors "smartstore/pkg/domain-errors"
)

func newProcessor(t *testing.T) (*Processor, *service.Service, *bytes.Buffer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ds := datastore.NewInMemory()
	svc := service.New(ds, catalog.New(ds), service.WithLogger(logger))
	var out bytes.Buffer
	return NewProcessor(svc, &out, logger), svc, &out
}

func TestRunDemoScript(t *testing.T) {
	p, svc, out := newProcessor(t)
	f, err := os.Open("testdata/store.script")
	require.NoError(t, err)
	defer f.Close()

	failures, err := p.Run(context.Background(), "store.script", f)
	require.NoError(t, err)

	lines := make([]int, len(failures))
	for i, fail := range failures {
		lines[i] = fail.Line
	}
	// Duplicate shelf level, guest purchase, command to a camera.
	assert.Equal(t, []int{5, 19, 26}, lines)
	assert.Equal(t, "define shelf", failures[0].Command)
	assert.True(t, dErrors.HasCode(failures[1], dErrors.CodeInvalidState))
	assert.Contains(t, failures[1].Reason, "guests may not purchase")

	ctx := context.Background()
	inv, err := svc.ShowInventory(ctx, "inv1")
	require.NoError(t, err)
	assert.Equal(t, 59, inv.Count)

	st, err := svc.ShowStore(ctx, "store1")
	require.NoError(t, err)
	assert.Equal(t, "corner store", st.Description)

	var basket models.Basket
	require.NoError(t, json.NewDecoder(out).Decode(&basket))
	assert.Equal(t, 1, basket.Quantity("milk"))
}

func TestExecuteErrors(t *testing.T) {
	p, _, _ := newProcessor(t)
	ctx := context.Background()

	tests := []struct {
		line    string
		command string
		code    dErrors.Code
	}{
		{"fly away", "fly", dErrors.CodeValidation},
		{"define", "define", dErrors.CodeValidation},
		{"define store", "define store", dErrors.CodeValidation},
		{"define store s1 name", "define store", dErrors.CodeValidation},
		{"define store s1 name x", "define store", dErrors.CodeValidation},
		{"show store ghost", "show store", dErrors.CodeNotFound},
		{"define aisle s1 location floor", "define aisle", dErrors.CodeValidation},
		{"update inventory i1 update_count many", "update inventory", dErrors.CodeValidation},
		{"define device d1 type toaster location s1:1", "define device", dErrors.CodeValidation},
		{"define device d1 type camera location s1:1", "define device", dErrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cerr := p.Execute(ctx, tt.line, 7)
			require.NotNil(t, cerr)
			assert.Equal(t, 7, cerr.Line)
			assert.Equal(t, tt.command, cerr.Command)
			assert.Equal(t, tt.code, dErrors.CodeOf(cerr), cerr.Error())
			assert.True(t, strings.HasPrefix(cerr.Error(), "line 7: "))
		})
	}

	assert.Nil(t, p.Execute(ctx, "   # only a comment", 1))
}

// readOnlyStores refuses store updates so a define that relied on a follow-up
// update would fail after the store already exists.
type readOnlyStores struct {
	*service.Service
}

func (readOnlyStores) UpdateStore(context.Context, string, string, string, string) (*models.Store, error) {
	return nil, dErrors.New(dErrors.CodeInvalidState, "updates disabled")
}

func TestDefineStoreWithDescriptionIsOneCommit(t *testing.T) {
	_, svc, _ := newProcessor(t)
	p := NewProcessor(readOnlyStores{Service: svc}, io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	cerr := p.Execute(ctx, `define store s1 name "Main" address "1 Main St" description "corner store"`, 1)
	require.Nil(t, cerr)

	st, err := svc.ShowStore(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "corner store", st.Description)

	// a failed define leaves nothing behind
	cerr = p.Execute(ctx, `define store s1 name "Again" address "2 Main St" description "dup"`, 2)
	require.NotNil(t, cerr)
	assert.True(t, dErrors.HasCode(cerr, dErrors.CodeDuplicateEntity))
	st, err = svc.ShowStore(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", st.Address)
}
