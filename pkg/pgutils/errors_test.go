package pgutils

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"unique violation", errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"), true},
		{"wrapped unique violation", fmt.Errorf("insert thing: %w", errors.New("SQLSTATE 23505")), true},
		{"foreign key violation", errors.New("SQLSTATE 23503"), false},
		{"unrelated error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.expected {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"fk violation", errors.New("ERROR: insert or update violates foreign key constraint (SQLSTATE 23503)"), true},
		{"unique violation", errors.New("SQLSTATE 23505"), false},
		{"unrelated error", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsForeignKeyViolation(tt.err); got != tt.expected {
				t.Errorf("IsForeignKeyViolation() = %v, want %v", got, tt.expected)
			}
		})
	}
}
