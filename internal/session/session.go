// Package session provides Valkey-backed admin session management for the
// JSON API. Sessions are identified by an opaque bearer token presented in
// the Authorization header and stored as JSON in Valkey with automatic TTL
// expiry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a session lives in Valkey before automatic expiry.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// tokenLength is the byte length of the random session token
	// (32 bytes = 64 hex chars).
	tokenLength = 32
)

// Data holds the session payload stored in Valkey: the authenticated
// admin's identity and 2FA completion status.
type Data struct {
	AdminID   uuid.UUID `json:"admin_id"`
	Email     string    `json:"email"`
	TwoFADone bool      `json:"two_fa_done"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store backed by the given Valkey client.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
	}
}

// Create generates a new session and stores it in Valkey. The returned
// token is what the client sends back as "Authorization: Bearer <token>".
func (s *Store) Create(ctx context.Context, data *Data) (string, error) {
	tok, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+tok, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}
	return tok, nil
}

// Get retrieves session data for a bearer token. Returns nil if the
// session does not exist or has expired.
func (s *Store) Get(ctx context.Context, tok string) (*Data, error) {
	if tok == "" {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+tok).Bytes()
	if err == redis.Nil {
		return nil, nil // Session expired or doesn't exist
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// Update rewrites session data in place, preserving the remaining TTL.
func (s *Store) Update(ctx context.Context, tok string, data *Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+tok, payload, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("session update: %w", err)
	}
	return nil
}

// Destroy removes a session from Valkey. Destroying an unknown token is
// not an error.
func (s *Store) Destroy(ctx context.Context, tok string) error {
	if tok == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+tok).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

// TokenFromRequest extracts the bearer token from the Authorization
// header. Returns an empty string when the header is missing or malformed.
func TokenFromRequest(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// generateToken returns a cryptographically random hex token.
func generateToken() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
