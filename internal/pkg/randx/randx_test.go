package randx_test

import (
	"regexp"
	"testing"

	"pulsechat/internal/pkg/randx"
)

// TestUsername verifies generated display names match the User_NNNN pattern.
func TestUsername(t *testing.T) {
	pattern := regexp.MustCompile(`^User_\d{4}$`)

	for range 100 {
		if name := randx.Username(); !pattern.MatchString(name) {
			t.Fatalf("Username() = %q, want match for %v", name, pattern)
		}
	}
}

// TestConnectionID verifies connection ids are well-formed and unique.
func TestConnectionID(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	seen := make(map[string]struct{})
	for range 100 {
		id := randx.ConnectionID()
		if !pattern.MatchString(id) {
			t.Fatalf("ConnectionID() = %q, not a UUID", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("ConnectionID() repeated %q", id)
		}
		seen[id] = struct{}{}
	}
}
