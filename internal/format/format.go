// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package format provides the server-side presentation transforms applied
// to the public catalog listing: word capitalization and hit-count
// abbreviation.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"techtrove/internal/models"
)

// Tool is the presentation form of a catalog tool. HitCount is rendered
// as a string so large counts can be abbreviated ("1.2k").
type Tool struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	AddedBy     string    `json:"addedBy"`
	HitCount    string    `json:"hitCount"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Category is the presentation form of a category with its tools.
type Category struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"category"`
	Tools []Tool    `json:"tools"`
}

// TitleCase uppercases the first letter of every word, leaving the rest
// of each word untouched. "image design tools" becomes "Image Design Tools".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevWord := false
	for _, r := range s {
		isWord := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWord && !prevWord {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		prevWord = isWord
	}
	return b.String()
}

// AbbreviateHits renders a hit count for display. Counts below 1000 are
// returned as plain integers; larger counts are abbreviated to one decimal
// with a "k" suffix, collapsing a trailing ".0": 847 -> "847",
// 1000 -> "1k", 1234 -> "1.2k".
func AbbreviateHits(count int) string {
	if count < 1000 {
		return strconv.Itoa(count)
	}
	thousands := math.Round(float64(count)/100.0) / 10
	s := strconv.FormatFloat(thousands, 'f', 1, 64) + "k"
	return strings.Replace(s, ".0k", "k", 1)
}

// Listing converts store categories into their public presentation form:
// category names and tool titles are title-cased, contributor names are
// lowercased, and hit counts are abbreviated. Category and tool order is
// preserved.
func Listing(cats []models.Category) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		fc := Category{
			ID:    c.ID,
			Name:  TitleCase(c.Name),
			Tools: make([]Tool, 0, len(c.Tools)),
		}
		for _, t := range c.Tools {
			fc.Tools = append(fc.Tools, Tool{
				ID:          t.ID,
				Title:       TitleCase(t.Title),
				Description: t.Description,
				URL:         t.URL,
				AddedBy:     strings.ToLower(t.AddedBy),
				HitCount:    AbbreviateHits(t.HitCount),
				Active:      t.Active,
				CreatedAt:   t.CreatedAt,
				UpdatedAt:   t.UpdatedAt,
			})
		}
		out = append(out, fc)
	}
	return out
}
