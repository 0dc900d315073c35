package handlers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/christianmesinas/famplan/internal/security"
	"github.com/christianmesinas/famplan/internal/service"
	"github.com/christianmesinas/famplan/pkg/logger"
)

const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 10 * time.Minute
	exchangeTimeout = 10 * time.Second
)

// AuthHandler drives the login flow against the external OIDC provider
type AuthHandler struct {
	authService *service.AuthService
	domain      string
	oauthConfig *oauth2.Config
}

// NewAuthHandler creates a new auth handler. domain is the provider's
// issuer host (e.g. the Auth0 tenant domain).
func NewAuthHandler(authService *service.AuthService, domain, clientID, clientSecret, baseURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		domain:      domain,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/callback",
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  fmt.Sprintf("https://%s/authorize", domain),
				TokenURL: fmt.Sprintf("https://%s/oauth/token", domain),
			},
		},
	}
}

// Login starts the provider flow with a fresh state cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := security.GenerateStateToken()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateCookieTTL.Seconds()),
	})

	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusFound)
}

// Callback handles the provider redirect: state check, code exchange,
// id_token verification, identity resolution and session creation. Any
// failure clears the session cookie and sends the user back to /login.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		h.failLogin(w, r, "state mismatch on callback", nil)
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, stateCookieName))

	if code == "" {
		h.failLogin(w, r, "callback missing authorization code", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), exchangeTimeout)
	defer cancel()

	token, err := h.oauthConfig.Exchange(ctx, code)
	if err != nil {
		h.failLogin(w, r, "code exchange failed", err)
		return
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		h.failLogin(w, r, "provider response missing id_token", nil)
		return
	}

	claims, err := h.verifyIDToken(ctx, idToken)
	if err != nil {
		h.failLogin(w, r, "id_token verification failed", err)
		return
	}

	user, err := h.authService.ResolveIdentity(claims.Subject, claims.Email, claims.Nickname)
	if err != nil {
		h.failLogin(w, r, "identity resolution failed", err)
		return
	}

	session, err := h.authService.CreateSession(user.ID)
	if err != nil {
		h.failLogin(w, r, "session creation failed", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout deletes the session row and cookie, then redirects to /login
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.Logout(cookie.Value); err != nil {
			logger.Warn().Err(err).Msg("Failed to delete session")
		}
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Me returns the authenticated user's own record
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, GetUserFromContext(r))
}

// UpdateMe handles PUT /api/me: profile edit of username and about text
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req struct {
		Username string `json:"username"`
		AboutMe  string `json:"about_me"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.authService.UpdateProfile(user.ID, req.Username, req.AboutMe)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// failLogin clears the session cookie and bounces to /login
func (h *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request, reason string, err error) {
	logger.Warn().Err(err).Str("reason", reason).Msg("Login failed")
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// verifyIDToken parses and verifies the provider id_token: RS256
// signature against the provider JWKS, then issuer and audience.
func (h *AuthHandler) verifyIDToken(ctx context.Context, idToken string) (*idTokenClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	claims := &idTokenClaims{}

	parsedToken, err := parser.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing key id")
		}
		return h.fetchProviderKey(ctx, kid)
	})
	if err != nil || !parsedToken.Valid {
		return nil, errors.New("invalid id_token")
	}

	expectedIssuer := fmt.Sprintf("https://%s/", h.domain)
	if claims.Issuer != expectedIssuer {
		return nil, errors.New("invalid issuer")
	}
	if !audienceContains(claims.Audience, h.oauthConfig.ClientID) {
		return nil, errors.New("invalid audience")
	}
	if claims.Subject == "" {
		return nil, errors.New("id_token missing subject")
	}
	return claims, nil
}

func audienceContains(audience jwt.ClaimStrings, value string) bool {
	for _, entry := range audience {
		if entry == value {
			return true
		}
	}
	return false
}

type providerJWKS struct {
	Keys []providerJWK `json:"keys"`
}

type providerJWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// fetchProviderKey loads the RSA public key with the given kid from
// the provider's JWKS endpoint.
func (h *AuthHandler) fetchProviderKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", h.domain)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("failed to fetch provider public keys")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var jwks providerJWKS
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, err
	}

	for _, key := range jwks.Keys {
		if key.Kid != kid {
			continue
		}
		if key.Kty != "RSA" {
			return nil, errors.New("unexpected key type")
		}
		modulusBytes, err := base64.RawURLEncoding.DecodeString(key.N)
		if err != nil {
			return nil, err
		}
		exponentBytes, err := base64.RawURLEncoding.DecodeString(key.E)
		if err != nil {
			return nil, err
		}
		exponent := 0
		for _, b := range exponentBytes {
			exponent = exponent*256 + int(b)
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(modulusBytes),
			E: exponent,
		}, nil
	}

	return nil, errors.New("provider public key not found")
}
