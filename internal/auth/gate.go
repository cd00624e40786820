// Package auth checks ingest requests against the shared credential.
package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/V4T54L/bbf-logging/internal/domain"
)

// Gate authorizes requests carrying an "Authorization: <scheme> <token>" header.
// It holds no mutable state and is safe for concurrent use.
type Gate struct {
	credential []byte
	scheme     string
}

// NewGate creates a Gate for the given credential. An empty requiredScheme
// accepts any scheme name; otherwise the scheme must match case-insensitively.
func NewGate(credential, requiredScheme string) *Gate {
	return &Gate{
		credential: []byte(credential),
		scheme:     requiredScheme,
	}
}

// Authorize returns nil when header carries the configured credential.
// Every other outcome wraps domain.ErrUnauthorized.
func (g *Gate) Authorize(header string) error {
	if len(g.credential) == 0 {
		return fmt.Errorf("%w: no credential configured", domain.ErrUnauthorized)
	}
	if header == "" {
		return fmt.Errorf("%w: missing authorization header", domain.ErrUnauthorized)
	}

	parts := strings.Fields(header)
	if len(parts) != 2 {
		return fmt.Errorf("%w: malformed authorization header", domain.ErrUnauthorized)
	}
	scheme, token := parts[0], parts[1]

	if g.scheme != "" && !strings.EqualFold(scheme, g.scheme) {
		return fmt.Errorf("%w: unsupported scheme %q", domain.ErrUnauthorized, scheme)
	}
	if subtle.ConstantTimeCompare([]byte(token), g.credential) != 1 {
		return fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	return nil
}
