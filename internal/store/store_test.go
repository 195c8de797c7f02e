package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMissingRelation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrMissingRelation, true},
		{"wrapped sentinel", fmt.Errorf("select: %w", ErrMissingRelation), true},
		{"sqlite message", errors.New("SQL logic error: no such table: tiles"), true},
		{"postgres message", errors.New(`relation "tiles" does not exist`), true},
		{"postgres code", errors.New("ERROR 42P01"), true},
		{"postgrest message", errors.New("Could not find the table 'public.tiles'"), true},
		{"network error", errors.New("dial tcp: connection refused"), false},
		{"auth error", errors.New("401 unauthorized"), false},
		{"timeout", errors.New("context deadline exceeded"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMissingRelation(tt.err); got != tt.want {
				t.Errorf("IsMissingRelation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestValidCollection(t *testing.T) {
	for _, name := range Collections() {
		if !ValidCollection(name) {
			t.Errorf("Collections() returned invalid name %q", name)
		}
	}
	for _, name := range []string{"", "orders", "tiles; DROP TABLE tiles"} {
		if ValidCollection(name) {
			t.Errorf("ValidCollection(%q) = true", name)
		}
	}
}
