package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/errs"
)

const (
	adminTokenIssuer  = "portfolio-content-backend"
	adminTokenSubject = "admin"
)

// adminAuth issues and verifies the HS256 bearer tokens guarding the admin API.
// An empty password disables the admin API altogether.
type adminAuth struct {
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func newAdminAuth(password, secret string, ttl time.Duration) adminAuth {
	if secret == "" {
		secret = password
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return adminAuth{password: password, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (a adminAuth) enabled() bool {
	return a.password != ""
}

func (a adminAuth) checkPassword(candidate string) bool {
	return a.enabled() && subtle.ConstantTimeCompare([]byte(candidate), []byte(a.password)) == 1
}

func (a adminAuth) issue() (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   adminTokenSubject,
		Issuer:    adminTokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

func (a adminAuth) verify(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(adminTokenIssuer), jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.Subject != adminTokenSubject {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.Subject, nil
}

type authMiddleware struct {
	responder Responder
	logger    zerolog.Logger
	auth      adminAuth
}

func newAuthMiddleware(auth adminAuth) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder: NewResponder(logger),
		logger:    logger,
		auth:      auth,
	}
}

func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.auth.enabled() {
			m.responder.WriteError(w, errs.NewForbiddenError("admin API is disabled"))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		subject, err := m.auth.verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			m.responder.WriteError(w, errs.NewInvalidTokenError(err))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithAdminSubject(r.Context(), subject)))
	})
}

// auditWrites logs every admin request that changes content, with the token subject.
// It must run after authenticate.
func (m authMiddleware) auditWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		subject, ok := ctxGetAdminSubject(r.Context())
		if !ok {
			m.responder.WriteError(w, errs.NewUnauthorizedError("missing admin subject"))
			return
		}

		sw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.logger.Info().
			Str("admin", subject).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Msg("Admin change")
	})
}

type tokenHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      adminAuth
}

func newTokenHandler(auth adminAuth) tokenHandler {
	logger := log.With().Str("handlerName", "tokenHandler").Logger()
	return tokenHandler{responder: NewResponder(logger), logger: logger, auth: auth}
}

type tokenRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// createToken exchanges the admin password for a bearer token.
func (h tokenHandler) createToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.auth.enabled() {
			h.responder.WriteError(w, errs.NewForbiddenError("admin API is disabled"))
			return
		}

		var req tokenRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !h.auth.checkPassword(req.Password) {
			h.logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("Rejected admin login")
			h.responder.WriteError(w, errs.NewUnauthorizedError("invalid credentials"))
			return
		}

		token, expires, err := h.auth.issue()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, tokenResponse{Token: token, ExpiresAt: expires})
	}
}
