// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Tool is a single cataloged AI tool inside a category. JSON field names
// follow the public API contract consumed by the TechTrove SPA.
type Tool struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	AddedBy     string    `json:"addedBy"`
	HitCount    int       `json:"hitCount"`
	Active      bool      `json:"active"`
	Position    int       `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Category groups tools under a unique display name. Tools keep their
// insertion order. Within one category no two tools may share a
// case-insensitive title or URL.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"category"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Populated by store methods.
	Tools []Tool `json:"tools"`
}
