// Package identifier produces the human-facing codes of the system: the
// DN-XXXXXXXX complaint code and the 5-character complainant public id.
package identifier

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodePrefix   = "DN-"
	codeLength   = 8
	publicLength = 5
)

// ExistsFunc reports whether a candidate identifier is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

func randomString(length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random character: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

// generate retries until exists reports the candidate free. Collisions are
// astronomically rare at this scale, but the retry loop is the contract:
// a generated identifier is unique against all existing records.
func generate(ctx context.Context, length int, prefix string, exists ExistsFunc) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		suffix, err := randomString(length)
		if err != nil {
			return "", err
		}
		candidate := prefix + suffix
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check identifier uniqueness: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
}

// Code returns a fresh complaint code matching ^DN-[A-Z0-9]{8}$.
func Code(ctx context.Context, exists ExistsFunc) (string, error) {
	return generate(ctx, codeLength, CodePrefix, exists)
}

// PublicID returns a fresh complainant id matching ^[A-Z0-9]{5}$.
func PublicID(ctx context.Context, exists ExistsFunc) (string, error) {
	return generate(ctx, publicLength, "", exists)
}
