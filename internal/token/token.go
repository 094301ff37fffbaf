// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package token signs short-lived snapshot tokens. A snapshot token wraps
// the exact JSON payload returned to the client so the SPA can keep a
// verifiable local copy of fetched data. It is a cache artifact, not an
// authentication credential.
package token

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// ListingTTL is how long a catalog listing snapshot stays valid.
	ListingTTL = 7 * time.Minute

	// UserTTL is how long a user snapshot stays valid.
	UserTTL = 45 * time.Minute

	issuer = "techtrove"
)

// Claims carries the snapshot payload under a single data claim.
type Claims struct {
	Data json.RawMessage `json:"data"`
	jwt.RegisteredClaims
}

// Sign serializes payload and wraps it in an HS256-signed token that
// expires after ttl.
func Sign(payload any, secret string, ttl time.Duration) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	now := time.Now()
	claims := Claims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign snapshot: %w", err)
	}
	return signed, nil
}

// Parse validates a snapshot token and returns the wrapped payload.
// It rejects tampered signatures, expired tokens, and non-HMAC
// signing methods.
func Parse(tokenString, secret string) (json.RawMessage, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid snapshot claims")
	}
	return claims.Data, nil
}
