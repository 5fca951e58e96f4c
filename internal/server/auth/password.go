package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// equalizerPlaintext is hashed once per verifier so that logins for unknown
// usernames spend the same bcrypt time as real ones.
const equalizerPlaintext = "scorekeeper-timing-equalizer"

// PasswordVerifier checks and produces bcrypt hashes. Concurrent bcrypt
// work is bounded by a weighted semaphore so hashing cannot starve the
// process under a burst of logins.
type PasswordVerifier struct {
	cost      int
	sem       *semaphore.Weighted
	dummyHash []byte
}

// NewPasswordVerifier creates a verifier hashing with cost and allowing at
// most maxConcurrent simultaneous bcrypt operations (GOMAXPROCS if <= 0).
func NewPasswordVerifier(cost int, maxConcurrent int64) (*PasswordVerifier, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d out of range", common.ErrorValidation, cost)
	}
	if maxConcurrent <= 0 {
		maxConcurrent = int64(runtime.GOMAXPROCS(0))
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(equalizerPlaintext), cost)
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy hash: %w", err)
	}

	return &PasswordVerifier{
		cost:      cost,
		sem:       semaphore.NewWeighted(maxConcurrent),
		dummyHash: dummy,
	}, nil
}

// Verify reports whether plaintext matches storedHash. A wrong password is
// (false, nil). A malformed stored hash is an error wrapping
// common.ErrBadDecryption.
func (v *PasswordVerifier) Verify(ctx context.Context, plaintext, storedHash string) (bool, error) {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer v.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrBadDecryption, err)
	}
}

// Equalize burns one bcrypt comparison against a dummy hash. The result is
// always discarded.
func (v *PasswordVerifier) Equalize(ctx context.Context, plaintext string) {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer v.sem.Release(1)

	_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(plaintext))
}

// Hash returns the bcrypt hash of plaintext.
func (v *PasswordVerifier) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer v.sem.Release(1)

	return HashPassword(plaintext, v.cost)
}

// HashPassword hashes plaintext with bcrypt at cost. Passwords longer than
// bcrypt accepts yield common.ErrorValidation.
func HashPassword(plaintext string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(b), nil
}
