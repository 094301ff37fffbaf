// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"techtrove/internal/models"
)

// UserStore handles all end-user database operations: the users
// themselves, their message logs, and their tool contribution records.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user, optionally with an initial message.
// The email address must be globally unique.
func (s *UserStore) Create(firstName, lastName, email, initialMessage string) (*models.User, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM users WHERE email = $1`, email).Scan(&one)
	if err == nil {
		return nil, NewInvalidInput("User already exists")
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("check email: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRow(`
		INSERT INTO users (first_name, last_name, email)
		VALUES ($1, $2, $3)
		RETURNING id
	`, firstName, lastName, email).Scan(&id)
	if isUniqueViolation(err) {
		return nil, NewInvalidInput("User already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if strings.TrimSpace(initialMessage) != "" {
		if _, err := s.db.Exec(`
			INSERT INTO user_messages (user_id, content) VALUES ($1, $2)
		`, id, initialMessage); err != nil {
			return nil, fmt.Errorf("create user message: %w", err)
		}
	}

	return s.FindByID(id)
}

// FindByID retrieves a user with messages and contributions. A missing
// user is a NotFound error.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	return s.findUser(`SELECT id, first_name, last_name, email, created_at FROM users WHERE id = $1`, id)
}

// FindByEmail retrieves a user by email address. A missing user is a
// NotFound error.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	return s.findUser(`SELECT id, first_name, last_name, email, created_at FROM users WHERE email = $1`, email)
}

func (s *UserStore) findUser(query string, arg any) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRow(query, arg).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, NewNotFound("User")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.attachDetails(u); err != nil {
		return nil, err
	}
	return u, nil
}

// attachDetails loads a user's message log and contribution records.
func (s *UserStore) attachDetails(u *models.User) error {
	rows, err := s.db.Query(`
		SELECT id, content, created_at FROM user_messages
		WHERE user_id = $1 ORDER BY created_at
	`, u.ID)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	u.Messages = []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.Timestamp); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		u.Messages = append(u.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	contribRows, err := s.db.Query(`
		SELECT category_id, tool_id FROM user_tools
		WHERE user_id = $1 ORDER BY created_at
	`, u.ID)
	if err != nil {
		return fmt.Errorf("load contributions: %w", err)
	}
	defer contribRows.Close()

	// Contributions are grouped per category, in first-contribution order.
	u.AITools = []models.Contribution{}
	index := map[uuid.UUID]int{}
	for contribRows.Next() {
		var categoryID, toolID uuid.UUID
		if err := contribRows.Scan(&categoryID, &toolID); err != nil {
			return fmt.Errorf("scan contribution: %w", err)
		}
		i, ok := index[categoryID]
		if !ok {
			i = len(u.AITools)
			index[categoryID] = i
			u.AITools = append(u.AITools, models.Contribution{CategoryID: categoryID})
		}
		u.AITools[i].ToolIDs = append(u.AITools[i].ToolIDs, toolID)
	}
	return contribRows.Err()
}

// List returns all users ordered by creation date.
func (s *UserStore) List() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT id, first_name, last_name, email, created_at FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		if err := s.attachDetails(&users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// Update modifies a user's name and email. Fails when the email is
// already used by another user.
func (s *UserStore) Update(id uuid.UUID, firstName, lastName, email string) (*models.User, error) {
	if email != "" {
		var otherID uuid.UUID
		err := s.db.QueryRow(`SELECT id FROM users WHERE email = $1 AND id <> $2`, email, id).Scan(&otherID)
		if err == nil {
			return nil, NewInvalidInput("Email already in use")
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("check email: %w", err)
		}
	}

	res, err := s.db.Exec(`
		UPDATE users SET first_name = $1, last_name = $2, email = $3 WHERE id = $4
	`, firstName, lastName, email, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, NewNotFound("User")
	}

	return s.FindByID(id)
}

// Delete removes a user and returns the deleted record.
func (s *UserStore) Delete(id uuid.UUID) (*models.User, error) {
	u, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return u, nil
}

// AppendMessage adds an entry to a user's message log.
func (s *UserStore) AppendMessage(id uuid.UUID, content string) (*models.User, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewInvalidInput("Message content is required")
	}

	if _, err := s.FindByID(id); err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(`INSERT INTO user_messages (user_id, content) VALUES ($1, $2)`, id, content); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	return s.FindByID(id)
}

// RecordContribution notes that a user added a tool to a category. The
// category save and this record are two separate writes with no spanning
// transaction; a failure in between leaves the tool without a user
// back-reference, which is accepted behavior.
func (s *UserStore) RecordContribution(userID, categoryID, toolID uuid.UUID) error {
	_, err := s.db.Exec(`
		INSERT INTO user_tools (user_id, category_id, tool_id) VALUES ($1, $2, $3)
	`, userID, categoryID, toolID)
	if err != nil {
		return fmt.Errorf("record contribution: %w", err)
	}
	return nil
}
