// Package kvtest holds a conformance suite for storage.KV backends.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/crewledger/internal/ledger/storage"
)

// Run exercises kv. Keys are prefixed so shared backends stay isolated.
func Run(t *testing.T, kv storage.KV, prefix string) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := kv.Get(ctx, prefix+"missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, prefix+"state", []byte(`{"schemaVersion":"1.0.0"}`)))
		got, err := kv.Get(ctx, prefix+"state")
		require.NoError(t, err)
		assert.JSONEq(t, `{"schemaVersion":"1.0.0"}`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, prefix+"history", []byte("[]")))
		require.NoError(t, kv.Set(ctx, prefix+"history", []byte(`[{"type":"crews/create"}]`)))
		got, err := kv.Get(ctx, prefix+"history")
		require.NoError(t, err)
		assert.Equal(t, `[{"type":"crews/create"}]`, string(got))
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, prefix+"copy", []byte("abc")))
		got, err := kv.Get(ctx, prefix+"copy")
		require.NoError(t, err)
		got[0] = 'z'
		again, err := kv.Get(ctx, prefix+"copy")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, prefix+"gone", []byte("x")))
		require.NoError(t, kv.Delete(ctx, prefix+"gone"))
		_, err := kv.Get(ctx, prefix+"gone")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, kv.Delete(ctx, prefix+"gone"))
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		assert.Error(t, kv.Set(canceled, prefix+"late", []byte("x")))
	})
}
