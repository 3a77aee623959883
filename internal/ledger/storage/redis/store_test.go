package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/crewledger/internal/ledger/storage/kvtest"
	"github.com/louisbranch/crewledger/internal/platform/config"
)

type testEnv struct {
	Addr string `env:"CREWLEDGER_TEST_REDIS_ADDR"`
	DB   int    `env:"CREWLEDGER_TEST_REDIS_DB" envDefault:"15"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	var env testEnv
	require.NoError(t, config.ParseEnv(&env))
	if env.Addr == "" {
		t.Skip("CREWLEDGER_TEST_REDIS_ADDR not set")
	}
	s, err := Open(context.Background(), Config{Addr: env.Addr, DB: env.DB})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresAddr(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	assert.Error(t, err)
}

func TestConformance(t *testing.T) {
	s := openTestStore(t)
	kvtest.Run(t, s, fmt.Sprintf("crewledger-test-%d/", time.Now().UnixNano()))
}
