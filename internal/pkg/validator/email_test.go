package validator

import (
	"errors"
	"testing"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		email string
		want  error
	}{
		{"jane@example.com", nil},
		{"user@line.me", nil},
		{"first.last+tag@mail.example.co.th", nil},
		{"jane", ErrEmailFormat},
		{"@example.com", ErrEmailFormat},
		{"jane@", ErrEmailFormat},
		{"jane@@example.com", ErrEmailFormat},
		{"jane doe@example.com", ErrEmailFormat},
		{"jane@localhost", nil},
		{"jane@exa_mple.com", ErrEmailDomain},
		{"jane@example..com", ErrEmailDomain},
		{"jane@-example.com", ErrEmailDomain},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if err := Email(tt.email); !errors.Is(err, tt.want) {
				t.Errorf("Email(%q) = %v, want %v", tt.email, err, tt.want)
			}
		})
	}
}
