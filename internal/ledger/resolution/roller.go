package resolution

import (
	"context"
	"errors"

	"github.com/louisbranch/crewledger/internal/random"
)

// ErrInvalidPool indicates a roll was requested with no dice.
var ErrInvalidPool = errors.New("dice pool must be positive")

// Roller produces die faces for a pool.
type Roller interface {
	Roll(ctx context.Context, count int) ([]int, error)
}

// RollerFunc adapts a function to Roller.
type RollerFunc func(ctx context.Context, count int) ([]int, error)

// Roll calls f.
func (f RollerFunc) Roll(ctx context.Context, count int) ([]int, error) { return f(ctx, count) }

// SeededRoller rolls d6s from a fresh seed per roll. Seed defaults to a
// crypto/rand source.
type SeededRoller struct {
	Seed func() (int64, error)
}

// Roll returns count faces between 1 and MaxFace.
func (r SeededRoller) Roll(ctx context.Context, count int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, ErrInvalidPool
	}
	seedFn := r.Seed
	if seedFn == nil {
		seedFn = random.NewSeed
	}
	seed, err := seedFn()
	if err != nil {
		return nil, err
	}
	return random.Faces(random.FromSeed(seed), count, MaxFace), nil
}
