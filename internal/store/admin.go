// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"techtrove/internal/models"
)

// AdminStore handles administrator account operations.
type AdminStore struct {
	db *sql.DB
}

// NewAdminStore creates a new AdminStore with the given database connection.
func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

const adminColumns = `id, email, password_hash, totp_secret, totp_enabled, created_at, updated_at`

func scanAdmin(scanner interface{ Scan(...any) error }) (*models.Admin, error) {
	a := &models.Admin{}
	err := scanner.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.TOTPSecret, &a.TOTPEnabled,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindByEmail retrieves an admin by email address. Returns nil if not found.
func (s *AdminStore) FindByEmail(email string) (*models.Admin, error) {
	a, err := scanAdmin(s.db.QueryRow(`SELECT `+adminColumns+` FROM admins WHERE email = $1`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return a, nil
}

// FindByID retrieves an admin by UUID. Returns nil if not found.
func (s *AdminStore) FindByID(id uuid.UUID) (*models.Admin, error) {
	a, err := scanAdmin(s.db.QueryRow(`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return a, nil
}

// Create inserts a new admin with a bcrypt-hashed password.
func (s *AdminStore) Create(email, password string) (*models.Admin, error) {
	existing, err := s.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewInvalidInput("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a, err := scanAdmin(s.db.QueryRow(`
		INSERT INTO admins (email, password_hash)
		VALUES ($1, $2)
		RETURNING `+adminColumns,
		email, string(hash),
	))
	if isUniqueViolation(err) {
		return nil, NewInvalidInput("User already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (s *AdminStore) CheckPassword(admin *models.Admin, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) == nil
}

// SetTOTPSecret saves the TOTP secret for an admin (during 2FA setup).
func (s *AdminStore) SetTOTPSecret(adminID uuid.UUID, secret string) error {
	_, err := s.db.Exec(`
		UPDATE admins SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, adminID)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for an admin (after successful code
// verification).
func (s *AdminStore) EnableTOTP(adminID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE admins SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, adminID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}
