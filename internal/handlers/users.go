// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"techtrove/internal/models"
	"techtrove/internal/store"
	"techtrove/internal/token"
)

// Users groups the end-user HTTP handlers: profile CRUD, message appends
// and tool contributions.
type Users struct {
	users       *store.UserStore
	catalog     *store.CategoryStore
	tokenSecret string
}

// NewUsers creates a new Users handler group.
func NewUsers(users *store.UserStore, catalog *store.CategoryStore, tokenSecret string) *Users {
	return &Users{
		users:       users,
		catalog:     catalog,
		tokenSecret: tokenSecret,
	}
}

// userSnapshot is the payload signed into the user snapshot token. The
// client keeps it as a local cache artifact; it is not a credential.
type userSnapshot struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
}

func (u *Users) snapshot(user *models.User) (string, error) {
	return token.Sign(userSnapshot{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, u.tokenSecret, token.UserTTL)
}

type createUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// Create registers a new user, optionally recording an initial message.
func (u *Users) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if msg := validateUserFields(req.FirstName, req.LastName, req.Email); msg != "" {
		respondError(w, store.NewValidationFailure(msg))
		return
	}

	user, err := u.users.Create(req.FirstName, req.LastName, req.Email, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}

	u.respondUser(w, http.StatusCreated, user, nil)
}

// GetByID serves a single user by id.
func (u *Users) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := u.users.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}

	tok, err := u.snapshot(user)
	if err != nil {
		respondError(w, store.NewInternal(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "success",
		"data": map[string]any{
			"user":          user,
			"encryptedData": tok,
		},
	})
}

// GetByEmail serves a single user by email address.
func (u *Users) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if !validEmail(email) {
		respondError(w, store.NewNotFound("User"))
		return
	}

	user, err := u.users.FindByEmail(email)
	if err != nil {
		respondError(w, err)
		return
	}

	u.respondUser(w, http.StatusOK, user, nil)
}

// List serves all users. Admin only.
func (u *Users) List(w http.ResponseWriter, r *http.Request) {
	users, err := u.users.List()
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "success",
		"data":    users,
	})
}

// Update replaces a user's profile fields. Admin only.
func (u *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if msg := validateUserFields(req.FirstName, req.LastName, req.Email); msg != "" {
		respondError(w, store.NewValidationFailure(msg))
		return
	}

	user, err := u.users.Update(id, req.FirstName, req.LastName, req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	u.respondWrapped(w, http.StatusOK, user)
}

// Delete removes a user and returns the deleted record. Admin only.
func (u *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := u.users.Delete(id)
	if err != nil {
		respondError(w, err)
		return
	}

	u.respondWrapped(w, http.StatusOK, user)
}

type messageRequest struct {
	Message string `json:"message"`
}

// Message appends a message to a user's log.
func (u *Users) Message(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if msg := validateMessage(req.Message); msg != "" {
		respondError(w, store.NewValidationFailure(msg))
		return
	}

	user, err := u.users.AppendMessage(id, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}

	u.respondUser(w, http.StatusCreated, user, nil)
}

type contributionRequest struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Contribution records a user-submitted tool. The tool lands in the
// catalog inactive with a zero hit count, and the contribution is linked
// to the user's profile. The catalog write and the profile link are two
// separate writes; if the second fails, the tool stays in the catalog
// pending review anyway.
func (u *Users) Contribution(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := u.users.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}

	var req contributionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Category == "" {
		respondError(w, store.NewValidationFailure("Category is required"))
		return
	}

	username := user.FirstName + " " + user.LastName
	cat, tool, err := u.catalog.AddContributedTool(req.Category, req.Title, req.Description, req.URL, username)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := u.users.RecordContribution(id, cat.ID, tool.ID); err != nil {
		respondError(w, err)
		return
	}

	user, err = u.users.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}

	u.respondUser(w, http.StatusCreated, user, map[string]any{
		"category": cat.Name,
		"tool": map[string]any{
			"id":          tool.ID,
			"title":       tool.Title,
			"description": tool.Description,
			"url":         tool.URL,
		},
	})
}

// respondUser writes the standard user envelope: the user plus a fresh
// snapshot token, with an optional addedTool block for contributions.
func (u *Users) respondUser(w http.ResponseWriter, status int, user *models.User, addedTool map[string]any) {
	tok, err := u.snapshot(user)
	if err != nil {
		respondError(w, store.NewInternal(err))
		return
	}

	data := map[string]any{
		"user":          user,
		"encryptedData": tok,
	}
	if addedTool != nil {
		data["addedTool"] = addedTool
		respondJSON(w, status, map[string]any{
			"message": "success",
			"data":    data,
		})
		return
	}
	respondJSON(w, status, data)
}

func (u *Users) respondWrapped(w http.ResponseWriter, status int, user *models.User) {
	tok, err := u.snapshot(user)
	if err != nil {
		respondError(w, store.NewInternal(err))
		return
	}
	respondJSON(w, status, map[string]any{
		"message": "success",
		"data": map[string]any{
			"user":          user,
			"encryptedData": tok,
		},
	})
}

func userID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, store.NewNotFound("User")
	}
	return id, nil
}
