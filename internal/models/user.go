// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single entry in a user's message log. The timestamp is set
// at creation and never changes.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Contribution records which tools a user added to a category. These are
// weak references by identifier: deleting a category or tool does not
// clean them up, so a contribution may point at entities that no longer
// exist.
type Contribution struct {
	CategoryID uuid.UUID   `json:"category"`
	ToolIDs    []uuid.UUID `json:"tools"`
}

// User is an end user of the catalog: someone who submitted a message via
// the contact form or contributed a tool.
type User struct {
	ID        uuid.UUID      `json:"id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email"`
	Messages  []Message      `json:"messages"`
	AITools   []Contribution `json:"aiTools"`
	CreatedAt time.Time      `json:"createdAt"`
}
