// Package hasher runs bcrypt on a bounded number of goroutines so that a
// burst of logins cannot take every CPU away from the rest of the server.
package hasher

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// ErrMismatch is returned by Compare when the password does not match.
var ErrMismatch = errors.New("password does not match")

// ErrTooLong is returned for passwords bcrypt cannot represent (over 72 bytes).
var ErrTooLong = errors.New("password exceeds 72 bytes")

type Pool struct {
	cost int
	sem  *semaphore.Weighted
}

// New returns a pool hashing at cost with at most workers concurrent bcrypt
// computations. workers <= 0 means GOMAXPROCS.
func New(cost, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(workers)),
	}
}

func (p *Pool) Hash(ctx context.Context, password string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire hash worker failed: %w", err)
	}
	defer p.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", fmt.Errorf("hash password failed: %w", err)
	}
	return string(hash), nil
}

// Compare checks password against a bcrypt hash. The salt and cost come from
// the hash itself and the final comparison is constant time.
func (p *Pool) Compare(ctx context.Context, hash, password string) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire hash worker failed: %w", err)
	}
	defer p.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("compare password failed: %w", err)
	}
}
