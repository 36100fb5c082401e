// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the signed session id.
const CookieName = "grid_session"

var (
	ErrInvalidToken     = errors.New("invalid session token format")
	ErrInvalidSignature = errors.New("invalid session signature")
)

// NewID creates a random session id
func NewID() string {
	return uuid.NewString()
}

// ViewParam is the form and query parameter carrying a view id
const ViewParam = "view"

// ViewFromRequest returns the view id r carries, or "" when it has none or
// the value is not a view id
func ViewFromRequest(r *http.Request) string {
	v := r.FormValue(ViewParam)
	if _, err := uuid.Parse(v); err != nil {
		return ""
	}
	return v
}

// GenerateSecret creates a random signing secret for when none is configured
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// Sign returns the HMAC-SHA256 of id under secret.
// URL-safe base64 without padding so it can sit in a cookie value
func Sign(id, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(id))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// Encode builds the cookie value "<id>.<signature>"
func Encode(id, secret string) string {
	return id + "." + Sign(id, secret)
}

// Decode verifies a cookie value and returns the session id it carries
func Decode(token, secret string) (string, error) {
	id, sig, ok := strings.Cut(token, ".")
	if !ok || id == "" || sig == "" {
		return "", ErrInvalidToken
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(Sign(id, secret))) {
		return "", ErrInvalidSignature
	}
	return id, nil
}

// FromRequest returns the verified session id of r, if it carries one
func FromRequest(r *http.Request, secret string) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	id, err := Decode(c.Value, secret)
	if err != nil {
		return "", false
	}
	return id, true
}

// SetCookie attaches the signed session id to the response
func SetCookie(w http.ResponseWriter, id, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    Encode(id, secret),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
