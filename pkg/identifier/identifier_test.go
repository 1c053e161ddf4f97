package identifier

import (
	"context"
	"errors"
	"regexp"
	"testing"
)

var (
	codePattern   = regexp.MustCompile(`^DN-[A-Z0-9]{8}$`)
	publicPattern = regexp.MustCompile(`^[A-Z0-9]{5}$`)
)

func never(context.Context, string) (bool, error) { return false, nil }

func TestCodePattern(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Code(context.Background(), never)
		if err != nil {
			t.Fatalf("Code error: %v", err)
		}
		if !codePattern.MatchString(code) {
			t.Fatalf("code %q does not match pattern", code)
		}
	}
}

func TestPublicIDPattern(t *testing.T) {
	for i := 0; i < 100; i++ {
		id, err := PublicID(context.Background(), never)
		if err != nil {
			t.Fatalf("PublicID error: %v", err)
		}
		if !publicPattern.MatchString(id) {
			t.Fatalf("public id %q does not match pattern", id)
		}
	}
}

func TestCodeRetriesOnCollision(t *testing.T) {
	taken := map[string]bool{}
	calls := 0
	exists := func(_ context.Context, candidate string) (bool, error) {
		calls++
		// The first three candidates are reported taken.
		if calls <= 3 {
			taken[candidate] = true
			return true, nil
		}
		return taken[candidate], nil
	}

	code, err := Code(context.Background(), exists)
	if err != nil {
		t.Fatalf("Code error: %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 uniqueness checks, got %d", calls)
	}
	if taken[code] {
		t.Fatalf("returned a code previously reported taken: %q", code)
	}
}

func TestCodePropagatesLookupError(t *testing.T) {
	lookupErr := errors.New("db down")
	_, err := Code(context.Background(), func(context.Context, string) (bool, error) {
		return false, lookupErr
	})
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}

func TestCodeHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Code(ctx, func(context.Context, string) (bool, error) { return true, nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
