package auth

import (
	"errors"
	"testing"

	"github.com/V4T54L/bbf-logging/internal/domain"
)

func TestGate_Authorize(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		scheme     string
		header     string
		wantErr    bool
	}{
		{name: "Bearer with matching token", credential: "secret123", header: "Bearer secret123"},
		{name: "Any scheme accepted by default", credential: "secret123", header: "Token secret123"},
		{name: "Extra whitespace tolerated", credential: "secret123", header: "  Bearer   secret123 "},
		{name: "Wrong token", credential: "secret123", header: "Bearer wrong", wantErr: true},
		{name: "Missing header", credential: "secret123", header: "", wantErr: true},
		{name: "Scheme only", credential: "secret123", header: "Bearer", wantErr: true},
		{name: "Whitespace only", credential: "secret123", header: "   ", wantErr: true},
		{name: "Token without scheme", credential: "secret123", header: "secret123", wantErr: true},
		{name: "Too many segments", credential: "secret123", header: "Bearer secret123 extra", wantErr: true},
		{name: "Token prefix", credential: "secret123", header: "Bearer secret", wantErr: true},
		{name: "Empty credential denies all", credential: "", header: "Bearer ", wantErr: true},
		{name: "Required scheme matches", credential: "secret123", scheme: "Bearer", header: "bearer secret123"},
		{name: "Required scheme mismatch", credential: "secret123", scheme: "Bearer", header: "Basic secret123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(tt.credential, tt.scheme)
			err := gate.Authorize(tt.header)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Authorize(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("expected error to wrap ErrUnauthorized, got %v", err)
			}
		})
	}
}
