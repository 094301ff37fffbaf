package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin account and two sample categories with a handful of tools.
// It is a no-op if an admin already exists. The admin will be prompted
// to set up 2FA on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		return fmt.Errorf("seed check admins: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO admins (email, password_hash, totp_enabled)
		VALUES ($1, $2, $3)
	`, "admin@techtrove.local", string(hash), false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	if err := seedCatalog(db); err != nil {
		return err
	}

	slog.Info("database seeded with default admin",
		"email", "admin@techtrove.local",
		"password", "admin",
	)

	return nil
}

// seedCatalog inserts sample categories and tools so the public listing
// is not empty on a fresh development database.
func seedCatalog(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	samples := map[string][]struct {
		title, description, url string
	}{
		"Image Design": {
			{"midjourney", "Text-to-image generation", "https://midjourney.com"},
			{"stable diffusion", "Open image generation model", "https://stability.ai"},
		},
		"Writing Assistants": {
			{"grammarly", "Writing correctness and tone", "https://grammarly.com"},
		},
	}

	for name, tools := range samples {
		var categoryID string
		err := db.QueryRow(`
			INSERT INTO categories (name) VALUES ($1) RETURNING id
		`, name).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}

		for i, tool := range tools {
			_, err := db.Exec(`
				INSERT INTO tools (category_id, title, description, url, added_by, hit_count, active, position)
				VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
			`, categoryID, tool.title, tool.description, tool.url, "seed", 1000, i)
			if err != nil {
				return fmt.Errorf("seed tool %q: %w", tool.title, err)
			}
		}
	}

	return nil
}
