package gateway

import (
	"crypto/subtle"

	"meetingmind/internal/domain"
)

// Authenticator validates incoming gateway connections.
type Authenticator interface {
	Authenticate(token string) error
}

// OpenAuth admits every connection. Used when no auth token is
// configured, matching a trusted-network deployment.
type OpenAuth struct{}

func (OpenAuth) Authenticate(string) error { return nil }

// StaticTokenAuth authenticates clients against a single shared token
// using constant-time comparison to prevent timing attacks.
type StaticTokenAuth struct {
	token []byte
}

// NewStaticTokenAuth builds an authenticator for the given token.
func NewStaticTokenAuth(token string) *StaticTokenAuth {
	return &StaticTokenAuth{token: []byte(token)}
}

// Authenticate returns nil if the token matches.
func (s *StaticTokenAuth) Authenticate(token string) error {
	if subtle.ConstantTimeCompare([]byte(token), s.token) == 1 {
		return nil
	}
	return domain.NewDomainError("gateway.Authenticate", domain.ErrAuthInvalid, "bad or missing token")
}

// AuthFromConfig picks the authenticator for the configured token.
func AuthFromConfig(token string) Authenticator {
	if token == "" {
		return OpenAuth{}
	}
	return NewStaticTokenAuth(token)
}
