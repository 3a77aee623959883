package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/crewledger/internal/ledger/storage/kvtest"
)

func openTempStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), " ")
	assert.Error(t, err)
}

func TestConformance(t *testing.T) {
	s := openTempStore(t, filepath.Join(t.TempDir(), "ledger.db"))
	kvtest.Run(t, s, "test/")
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "crew/state", []byte(`{"characters":{}}`)))
	require.NoError(t, first.Close())

	second := openTempStore(t, path)
	got, err := second.Get(ctx, "crew/state")
	require.NoError(t, err)
	assert.Equal(t, `{"characters":{}}`, string(got))
}

func TestCloseNilStore(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
}
