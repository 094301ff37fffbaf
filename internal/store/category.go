// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all TechTrove
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"techtrove/internal/format"
	"techtrove/internal/models"
)

// CategoryStore manages categories and their tools in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const toolColumns = `id, category_id, title, description, url, added_by, hit_count, active, position, created_at, updated_at`

// NewTool is one incoming item for AddTools. Active defaults to false
// when not supplied.
type NewTool struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	AddedBy     string `json:"addedBy"`
	Active      *bool  `json:"active"`
}

// ToolPatch carries a partial tool update. Nil fields are left unchanged;
// the identifier and creation timestamp can never be patched.
type ToolPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	AddedBy     *string `json:"addedBy"`
	HitCount    *int    `json:"hitCount"`
	Active      *bool   `json:"active"`
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

// scanTool scans a row into a Tool struct.
func scanTool(scanner interface{ Scan(...any) error }) (*models.Tool, error) {
	var t models.Tool
	err := scanner.Scan(
		&t.ID, &t.CategoryID, &t.Title, &t.Description, &t.URL,
		&t.AddedBy, &t.HitCount, &t.Active, &t.Position,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// scanCategory scans a category row without its tools.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	if err := scanner.Scan(&c.ID, &c.Name, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Tools = []models.Tool{}
	return &c, nil
}

// FindByID retrieves a category with its tools. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	return s.findCategory(s.db, `SELECT id, name, updated_at FROM categories WHERE id = $1`, id)
}

// FindByName retrieves a category with its tools by display name.
// Returns nil if not found.
func (s *CategoryStore) FindByName(name string) (*models.Category, error) {
	return s.findCategory(s.db, `SELECT id, name, updated_at FROM categories WHERE name = $1`, name)
}

func (s *CategoryStore) findCategory(q querier, query string, arg any) (*models.Category, error) {
	c, err := scanCategory(q.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}

	tools, err := loadTools(q, c.ID, false)
	if err != nil {
		return nil, err
	}
	c.Tools = tools
	return c, nil
}

// loadTools returns a category's tools in insertion order. When activeOnly
// is set, inactive tools are excluded.
func loadTools(q querier, categoryID uuid.UUID, activeOnly bool) ([]models.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE category_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY position, created_at`

	rows, err := q.Query(query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("load tools: %w", err)
	}
	defer rows.Close()

	tools := []models.Tool{}
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		tools = append(tools, *t)
	}
	return tools, rows.Err()
}

// ListRaw returns every category with every tool, active or not, for
// administrative consumption. Categories are ordered by case-normalized name.
func (s *CategoryStore) ListRaw() ([]models.Category, error) {
	return s.list(false)
}

// ListActive returns the public listing: only categories holding at least
// one active tool, with inactive tools filtered out, ordered by
// case-normalized category name ascending.
func (s *CategoryStore) ListActive() ([]models.Category, error) {
	return s.list(true)
}

func (s *CategoryStore) list(activeOnly bool) ([]models.Category, error) {
	query := `SELECT id, name, updated_at FROM categories`
	if activeOnly {
		query += ` WHERE EXISTS (SELECT 1 FROM tools t WHERE t.category_id = categories.id AND t.active)`
	}
	query += ` ORDER BY LOWER(name)`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	index := map[uuid.UUID]int{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		index[c.ID] = len(cats)
		cats = append(cats, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	toolQuery := `SELECT ` + toolColumns + ` FROM tools`
	if activeOnly {
		toolQuery += ` WHERE active`
	}
	toolQuery += ` ORDER BY category_id, position, created_at`

	toolRows, err := s.db.Query(toolQuery)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	defer toolRows.Close()

	for toolRows.Next() {
		t, err := scanTool(toolRows)
		if err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		if i, ok := index[t.CategoryID]; ok {
			cats[i].Tools = append(cats[i].Tools, *t)
		}
	}
	return cats, toolRows.Err()
}

// Search returns categories matching a case-insensitive substring query
// against the category name or a tool title, restricted to active tools.
// A name match returns all of the category's active tools; otherwise only
// the tools whose titles match are returned. Categories without any active
// tool never appear.
func (s *CategoryStore) Search(query string) ([]models.Category, error) {
	pattern := "%" + escapeLike(query) + "%"

	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.updated_at
		FROM categories c
		WHERE EXISTS (SELECT 1 FROM tools t WHERE t.category_id = c.id AND t.active)
		  AND (c.name ILIKE $1 ESCAPE '\'
		       OR EXISTS (SELECT 1 FROM tools t WHERE t.category_id = c.id AND t.active AND t.title ILIKE $1 ESCAPE '\'))
		ORDER BY LOWER(c.name)
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lowerQuery := strings.ToLower(query)
	results := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		tools, err := loadTools(s.db, c.ID, true)
		if err != nil {
			return nil, err
		}

		if strings.Contains(strings.ToLower(c.Name), lowerQuery) {
			c.Tools = tools
		} else {
			matched := []models.Tool{}
			for _, t := range tools {
				if strings.Contains(strings.ToLower(t.Title), lowerQuery) {
					matched = append(matched, t)
				}
			}
			c.Tools = matched
		}

		if len(c.Tools) > 0 {
			results = append(results, c)
		}
	}
	return results, nil
}

// AddTools appends a batch of tools to the named category inside a single
// transaction, creating the category lazily on first use. The whole batch
// is rejected when any incoming tool's title or URL collides
// case-insensitively with an existing tool or an earlier item in the same
// batch; no partial insertion happens. Admitted tools are normalized
// (title-cased title and contributor), default to inactive, and start with
// a hit count of 1000.
func (s *CategoryStore) AddTools(name string, incoming []NewTool) (*models.Category, error) {
	if strings.TrimSpace(name) == "" || len(incoming) == 0 {
		return nil, NewInvalidInput("Invalid input data")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cat, err := scanCategory(tx.QueryRow(`SELECT id, name, updated_at FROM categories WHERE name = $1`, name))
	if err == sql.ErrNoRows {
		cat, err = scanCategory(tx.QueryRow(`INSERT INTO categories (name) VALUES ($1) RETURNING id, name, updated_at`, name))
		if isUniqueViolation(err) {
			return nil, NewCategoryNameConflict(name)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("upsert category: %w", err)
	}

	existing, err := loadTools(tx, cat.ID, false)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]bool, len(existing))
	urls := make(map[string]bool, len(existing))
	for _, t := range existing {
		titles[strings.ToLower(t.Title)] = true
		urls[strings.ToLower(t.URL)] = true
	}

	// Membership checks are sequential: an admitted item extends the sets
	// that later items in the same batch are checked against.
	var staged []models.Tool
	var dupTitles, dupURLs []string
	now := time.Now()
	for _, in := range incoming {
		lowerTitle := strings.ToLower(in.Title)
		lowerURL := strings.ToLower(in.URL)

		if !titles[lowerTitle] && !urls[lowerURL] {
			titles[lowerTitle] = true
			urls[lowerURL] = true

			active := false
			if in.Active != nil {
				active = *in.Active
			}
			staged = append(staged, models.Tool{
				CategoryID:  cat.ID,
				Title:       format.TitleCase(in.Title),
				Description: in.Description,
				URL:         in.URL,
				AddedBy:     format.TitleCase(in.AddedBy),
				HitCount:    1000,
				Active:      active,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		} else {
			if titles[lowerTitle] {
				dupTitles = append(dupTitles, in.Title)
			}
			if urls[lowerURL] {
				dupURLs = append(dupURLs, in.URL)
			}
		}
	}

	if len(dupTitles) > 0 || len(dupURLs) > 0 {
		return nil, NewDuplicateConflict(dupTitles, dupURLs)
	}

	for _, t := range staged {
		if err := validateToolFields(t.Title, t.Description, t.URL, t.AddedBy); err != nil {
			return nil, err
		}
	}

	position, err := nextPosition(tx, cat.ID)
	if err != nil {
		return nil, err
	}
	for i, t := range staged {
		_, err := tx.Exec(`
			INSERT INTO tools (category_id, title, description, url, added_by, hit_count, active, position, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, t.CategoryID, t.Title, t.Description, t.URL, t.AddedBy, t.HitCount, t.Active, position+i, t.CreatedAt, t.UpdatedAt)
		if isUniqueViolation(err) {
			return nil, NewDuplicateConflict([]string{t.Title}, []string{t.URL})
		}
		if err != nil {
			return nil, fmt.Errorf("insert tool %q: %w", t.Title, err)
		}
	}

	if err := touchCategory(tx, cat.ID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add tools: %w", err)
	}

	return s.FindByID(cat.ID)
}

// GetTool retrieves a single tool and its category's display name.
func (s *CategoryStore) GetTool(categoryID, toolID uuid.UUID) (*models.Tool, string, error) {
	cat, err := scanCategory(s.db.QueryRow(`SELECT id, name, updated_at FROM categories WHERE id = $1`, categoryID))
	if err == sql.ErrNoRows {
		return nil, "", NewNotFound("AI Tool category")
	}
	if err != nil {
		return nil, "", fmt.Errorf("get tool category: %w", err)
	}

	t, err := scanTool(s.db.QueryRow(`SELECT `+toolColumns+` FROM tools WHERE id = $1 AND category_id = $2`, toolID, categoryID))
	if err == sql.ErrNoRows {
		return nil, "", NewNotFound("Tool")
	}
	if err != nil {
		return nil, "", fmt.Errorf("get tool: %w", err)
	}
	return t, cat.Name, nil
}

// IncrementHit adds one recorded visit to a tool's counter. The store is
// left unchanged when the category or tool does not exist.
func (s *CategoryStore) IncrementHit(categoryID, toolID uuid.UUID) (*models.Tool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := categoryExists(tx, categoryID); err != nil {
		return nil, err
	}

	res, err := tx.Exec(`UPDATE tools SET hit_count = hit_count + 1 WHERE id = $1 AND category_id = $2`, toolID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("increment hit count: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, NewNotFound("Tool")
	}

	// Persisting the category document touches every tool's updated_at.
	if err := touchCategory(tx, categoryID, time.Now()); err != nil {
		return nil, err
	}

	t, err := scanTool(tx.QueryRow(`SELECT ` + toolColumns + ` FROM tools WHERE id = $1`, toolID))
	if err != nil {
		return nil, fmt.Errorf("reload tool: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit hit count: %w", err)
	}
	return t, nil
}

// ToggleActive flips a tool's visibility flag. The category is addressed
// by display name, matching the admin API contract.
func (s *CategoryStore) ToggleActive(categoryName string, toolID uuid.UUID) (*models.Tool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cat, err := scanCategory(tx.QueryRow(`SELECT id, name, updated_at FROM categories WHERE name = $1`, categoryName))
	if err == sql.ErrNoRows {
		return nil, NewNotFound("AI Tool category")
	}
	if err != nil {
		return nil, fmt.Errorf("toggle category: %w", err)
	}

	res, err := tx.Exec(`UPDATE tools SET active = NOT active WHERE id = $1 AND category_id = $2`, toolID, cat.ID)
	if err != nil {
		return nil, fmt.Errorf("toggle active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, NewNotFound("Tool")
	}

	if err := touchCategory(tx, cat.ID, time.Now()); err != nil {
		return nil, err
	}

	t, err := scanTool(tx.QueryRow(`SELECT ` + toolColumns + ` FROM tools WHERE id = $1`, toolID))
	if err != nil {
		return nil, fmt.Errorf("reload tool: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit toggle: %w", err)
	}
	return t, nil
}

// UpdateTool applies a partial update to one tool. Every supplied field is
// applied except the identifier and creation timestamp; updated_at is
// always refreshed.
func (s *CategoryStore) UpdateTool(categoryID, toolID uuid.UUID, patch ToolPatch) (*models.Tool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := categoryExists(tx, categoryID); err != nil {
		return nil, err
	}

	t, err := scanTool(tx.QueryRow(`SELECT `+toolColumns+` FROM tools WHERE id = $1 AND category_id = $2`, toolID, categoryID))
	if err == sql.ErrNoRows {
		return nil, NewNotFound("Tool")
	}
	if err != nil {
		return nil, fmt.Errorf("load tool: %w", err)
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.URL != nil {
		t.URL = *patch.URL
	}
	if patch.AddedBy != nil {
		t.AddedBy = *patch.AddedBy
	}
	if patch.HitCount != nil {
		t.HitCount = *patch.HitCount
	}
	if patch.Active != nil {
		t.Active = *patch.Active
	}

	if err := validateToolFields(t.Title, t.Description, t.URL, t.AddedBy); err != nil {
		return nil, err
	}
	if t.HitCount < 0 {
		return nil, NewValidationFailure("hitCount must not be negative")
	}

	now := time.Now()
	_, err = tx.Exec(`
		UPDATE tools SET title = $1, description = $2, url = $3, added_by = $4,
			hit_count = $5, active = $6, updated_at = $7
		WHERE id = $8
	`, t.Title, t.Description, t.URL, t.AddedBy, t.HitCount, t.Active, now, t.ID)
	if isUniqueViolation(err) {
		return nil, NewDuplicateConflict([]string{t.Title}, []string{t.URL})
	}
	if err != nil {
		return nil, fmt.Errorf("update tool: %w", err)
	}

	if err := touchCategory(tx, categoryID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	t.UpdatedAt = now
	return t, nil
}

// DeleteTool removes a tool from its category. Deleting an id that is
// already absent succeeds and returns the unchanged category; only a
// missing category is an error.
func (s *CategoryStore) DeleteTool(categoryID, toolID uuid.UUID) (*models.Category, error) {
	if err := categoryExists(s.db, categoryID); err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(`DELETE FROM tools WHERE id = $1 AND category_id = $2`, toolID, categoryID); err != nil {
		return nil, fmt.Errorf("delete tool: %w", err)
	}

	// Sibling timestamps are deliberately left alone here: the removal is
	// an atomic pull, not a document save.
	if _, err := s.db.Exec(`UPDATE categories SET updated_at = $1 WHERE id = $2`, time.Now(), categoryID); err != nil {
		return nil, fmt.Errorf("touch category: %w", err)
	}

	return s.FindByID(categoryID)
}

// AddContributedTool inserts a single user-contributed tool, creating the
// category lazily. Contributed tools start inactive with a zero hit count
// and skip the batch duplicate scan; moderation surfaces them later via
// ToggleActive. The unique indexes still reject exact case-insensitive
// collisions at persist time.
func (s *CategoryStore) AddContributedTool(categoryName, title, description, url, username string) (*models.Category, *models.Tool, error) {
	if err := validateToolFields(title, description, url, username); err != nil {
		return nil, nil, err
	}

	cat, err := s.FindByName(categoryName)
	if err != nil {
		return nil, nil, err
	}
	if cat == nil {
		cat, err = scanCategory(s.db.QueryRow(`INSERT INTO categories (name) VALUES ($1) RETURNING id, name, updated_at`, categoryName))
		if isUniqueViolation(err) {
			return nil, nil, NewCategoryNameConflict(categoryName)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("create category: %w", err)
		}
	}

	position, err := nextPosition(s.db, cat.ID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	t, err := scanTool(s.db.QueryRow(`
		INSERT INTO tools (category_id, title, description, url, added_by, hit_count, active, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, FALSE, $6, $7, $7)
		RETURNING `+toolColumns,
		cat.ID, title, description, url, username, position, now,
	))
	if isUniqueViolation(err) {
		return nil, nil, NewDuplicateConflict([]string{title}, []string{url})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("insert contributed tool: %w", err)
	}

	if err := touchCategory(s.db, cat.ID, now); err != nil {
		return nil, nil, err
	}

	return cat, t, nil
}

// categoryExists returns NotFound when no category has the given id.
func categoryExists(q querier, id uuid.UUID) error {
	var one int
	err := q.QueryRow(`SELECT 1 FROM categories WHERE id = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return NewNotFound("AI Tool category")
	}
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}

// touchCategory refreshes updated_at on the category and on every tool in
// it. The category behaves as one document: a mutation to any tool touches
// all of its siblings.
func touchCategory(q querier, categoryID uuid.UUID, now time.Time) error {
	if _, err := q.Exec(`UPDATE tools SET updated_at = $1 WHERE category_id = $2`, now, categoryID); err != nil {
		return fmt.Errorf("touch tools: %w", err)
	}
	if _, err := q.Exec(`UPDATE categories SET updated_at = $1 WHERE id = $2`, now, categoryID); err != nil {
		return fmt.Errorf("touch category: %w", err)
	}
	return nil
}

// nextPosition returns the next insertion-order slot within a category.
func nextPosition(q querier, categoryID uuid.UUID) (int, error) {
	var position int
	err := q.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM tools WHERE category_id = $1`, categoryID).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}
	return position, nil
}

// validateToolFields enforces the schema-level rules shared by every write
// path: all text fields are required and the URL must be absolute http(s).
func validateToolFields(title, description, url, addedBy string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return NewValidationFailure("title is required")
	case strings.TrimSpace(description) == "":
		return NewValidationFailure("description is required")
	case strings.TrimSpace(addedBy) == "":
		return NewValidationFailure("addedBy is required")
	}
	lower := strings.ToLower(url)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return NewValidationFailure(fmt.Sprintf("%s is not a valid URL", url))
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-index
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// escapeLike escapes LIKE wildcards so user queries match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
