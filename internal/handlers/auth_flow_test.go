// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	"techtrove/internal/session"
)

func TestSignupHandler(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { env.cleanAdmins(t, "new-admin@example.com") })

	payload := `{"email":"new-admin@example.com","password":"longenough"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/signup", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	env.Auth.Signup(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	// The hash must never leak in the response.
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Errorf("response leaks password material: %s", rec.Body.String())
	}

	// Weak password is rejected.
	req = httptest.NewRequest(http.MethodPost, "/admin/signup",
		bytes.NewBufferString(`{"email":"other@example.com","password":"short"}`))
	rec = httptest.NewRecorder()
	env.Auth.Signup(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("weak password: status %d, want 400", rec.Code)
	}
}

func TestLoginFlowWithTOTP(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { env.cleanAdmins(t, "flow-admin@example.com") })

	if _, err := env.Admins.Create("flow-admin@example.com", "longenough"); err != nil {
		t.Fatalf("admin create: %v", err)
	}

	// Wrong password is rejected.
	rec := httptest.NewRecorder()
	env.Auth.Login(rec, httptest.NewRequest(http.MethodPost, "/admin/login",
		bytes.NewBufferString(`{"email":"flow-admin@example.com","password":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d, want 401", rec.Code)
	}

	// Correct password opens a session pending 2FA setup.
	rec = httptest.NewRecorder()
	env.Auth.Login(rec, httptest.NewRequest(http.MethodPost, "/admin/login",
		bytes.NewBufferString(`{"email":"flow-admin@example.com","password":"longenough"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}

	var login struct {
		Token     string `json:"token"`
		TwoFactor string `json:"twoFactor"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if login.TwoFactor != "setup" {
		t.Errorf("twoFactor = %q, want setup", login.TwoFactor)
	}

	sess, err := env.Sessions.Get(context.Background(), login.Token)
	if err != nil || sess == nil {
		t.Fatalf("session missing: %v", err)
	}
	if sess.TwoFADone {
		t.Fatal("session should not have 2FA done yet")
	}

	// 2FA setup returns the secret and a QR code.
	req := httptest.NewRequest(http.MethodGet, "/admin/2fa/setup", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	req = withSession(req, sess)
	rec = httptest.NewRecorder()
	env.Auth.TwoFASetup(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("setup: status %d, body %s", rec.Code, rec.Body.String())
	}

	var setup struct {
		Secret string `json:"secret"`
		URL    string `json:"url"`
		QR     string `json:"qr"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &setup); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if setup.Secret == "" || setup.URL == "" || setup.QR == "" {
		t.Fatalf("incomplete setup payload: %+v", setup)
	}

	// A wrong code is rejected.
	req = httptest.NewRequest(http.MethodPost, "/admin/2fa/verify",
		bytes.NewBufferString(`{"code":"000000"}`))
	req.Header.Set("Authorization", "Bearer "+login.Token)
	req = withSession(req, sess)
	rec = httptest.NewRecorder()
	env.Auth.TwoFAVerify(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad code: status %d, want 401", rec.Code)
	}

	// A valid code completes enrollment and marks the session.
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/admin/2fa/verify",
		bytes.NewBufferString(`{"code":"`+code+`"}`))
	req.Header.Set("Authorization", "Bearer "+login.Token)
	req = withSession(req, sess)
	rec = httptest.NewRecorder()
	env.Auth.TwoFAVerify(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: status %d, body %s", rec.Code, rec.Body.String())
	}

	sess, err = env.Sessions.Get(context.Background(), login.Token)
	if err != nil || sess == nil {
		t.Fatalf("session missing after verify: %v", err)
	}
	if !sess.TwoFADone {
		t.Error("session should have 2FA done")
	}

	admin, err := env.Admins.FindByEmail("flow-admin@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if !admin.TOTPEnabled {
		t.Error("totp should be enabled after first verification")
	}

	// A later login goes straight to verify.
	rec = httptest.NewRecorder()
	env.Auth.Login(rec, httptest.NewRequest(http.MethodPost, "/admin/login",
		bytes.NewBufferString(`{"email":"flow-admin@example.com","password":"longenough"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("second login: status %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if login.TwoFactor != "verify" {
		t.Errorf("twoFactor = %q, want verify", login.TwoFactor)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	env := newTestEnv(t)

	tok, err := env.Sessions.Create(context.Background(), &session.Data{
		Email: "bye@example.com",
	})
	if err != nil {
		t.Fatalf("session create: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	env.Auth.Logout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	sess, err := env.Sessions.Get(context.Background(), tok)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess != nil {
		t.Error("session should be destroyed")
	}
}
