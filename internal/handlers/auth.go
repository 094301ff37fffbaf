// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"techtrove/internal/middleware"
	"techtrove/internal/session"
	"techtrove/internal/store"
)

// Auth groups the admin authentication handlers: signup, login with
// mandatory TOTP, and logout. Sessions are opaque bearer tokens backed by
// Valkey.
type Auth struct {
	sessions *session.Store
	admins   *store.AdminStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, admins *store.AdminStore) *Auth {
	return &Auth{
		sessions: sessions,
		admins:   admins,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new admin account. The password is stored as a
// bcrypt hash; signing in still requires completing TOTP enrollment.
func (a *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if msg := validateCredentials(req.Email, req.Password); msg != "" {
		respondError(w, store.NewValidationFailure(msg))
		return
	}

	admin, err := a.admins.Create(req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "success",
		"data":    admin,
	})
}

// Login checks the credentials and opens a session with 2FA still
// pending. The response tells the client whether the next step is TOTP
// enrollment or code verification.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	admin, err := a.admins.FindByEmail(req.Email)
	if err != nil {
		respondError(w, store.NewInternal(err))
		return
	}
	if admin == nil || !a.admins.CheckPassword(admin, req.Password) {
		respondJSON(w, http.StatusUnauthorized, map[string]any{
			"error": "Invalid email or password",
		})
		return
	}

	tok, err := a.sessions.Create(r.Context(), &session.Data{
		AdminID:   admin.ID,
		Email:     admin.Email,
		TwoFADone: false,
	})
	if err != nil {
		respondError(w, store.NewInternal(err))
		return
	}

	next := "verify"
	if admin.Needs2FASetup() {
		next = "setup"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":   "success",
		"token":     tok,
		"twoFactor": next,
	})
}

// TwoFASetup generates a fresh TOTP secret for the logged-in admin and
// returns it together with an otpauth URL and a base64 PNG QR code.
// Requires a session; the secret stays disabled until the first code is
// verified.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "TechTrove",
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		respondError(w, store.NewInternal(err))
		return
	}

	if err := a.admins.SetTOTPSecret(sess.AdminID, key.Secret()); err != nil {
		respondError(w, store.NewInternal(err))
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		respondError(w, store.NewInternal(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"secret": key.Secret(),
		"url":    key.URL(),
		"qr":     base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type twoFAVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify validates a TOTP code and marks the session as fully
// authenticated. On first-time setup this also flips the enrollment flag.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req twoFAVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	admin, err := a.admins.FindByID(sess.AdminID)
	if err != nil || admin == nil {
		slog.Error("admin lookup for 2fa failed", "error", err)
		respondJSON(w, http.StatusUnauthorized, map[string]any{
			"error": "Authentication required",
		})
		return
	}

	if admin.TOTPSecret == nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Two-factor setup has not been started",
		})
		return
	}

	if !totp.Validate(req.Code, *admin.TOTPSecret) {
		respondJSON(w, http.StatusUnauthorized, map[string]any{
			"error": "Invalid verification code",
		})
		return
	}

	if !admin.TOTPEnabled {
		if err := a.admins.EnableTOTP(admin.ID); err != nil {
			respondError(w, store.NewInternal(err))
			return
		}
	}

	sess.TwoFADone = true
	tok := session.TokenFromRequest(r)
	if err := a.sessions.Update(r.Context(), tok, sess); err != nil {
		respondError(w, store.NewInternal(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"message": "success"})
}

// Logout destroys the session. Safe to call without one.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if tok := session.TokenFromRequest(r); tok != "" {
		if err := a.sessions.Destroy(r.Context(), tok); err != nil {
			slog.Warn("session destroy failed", "error", err)
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "success"})
}
