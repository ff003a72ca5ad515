// Package auth issues and validates the bearer tokens presented when a
// client opens its realtime connection.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"heartline/backend/internal/storage"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken    = errors.New("authorization token missing")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrSessionNotFound = errors.New("session not found or revoked")
	ErrUserBanned      = errors.New("user is banned")
)

// Claims carries the user identity. RegisteredClaims.ID (jti) is the key of
// the server-side session record.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier resolves a bearer token to a user id.
type Verifier interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// Authenticator validates a token and exchanges it for the session's user.
type Authenticator struct {
	secret   []byte
	issuer   string
	sessions storage.SessionStore
}

func NewAuthenticator(secret, issuer string, sessions storage.SessionStore) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, sessions: sessions}
}

// Authenticate returns the user id behind token. Any error means the
// connection attempt must be refused.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	claims, err := a.parse(token)
	if err != nil {
		return "", err
	}

	userID, err := a.sessions.GetSessionUserID(ctx, claims.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session lookup: %w", err)
	}
	if userID != claims.UserID {
		return "", ErrSessionNotFound
	}

	banned, err := a.sessions.IsUserBanned(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("ban lookup: %w", err)
	}
	if banned {
		return "", ErrUserBanned
	}
	return userID, nil
}

func (a *Authenticator) parse(token string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Issuer signs tokens and records their sessions.
type Issuer struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	sessions storage.SessionStore
}

func NewIssuer(secret, issuer string, ttl time.Duration, sessions storage.SessionStore) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, sessions: sessions}
}

// Issue returns a signed token and its session id (jti).
func (i *Issuer) Issue(ctx context.Context, userID string) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", "", err
	}
	if err := i.sessions.SaveSession(ctx, jti, userID, i.ttl); err != nil {
		return "", "", fmt.Errorf("save session: %w", err)
	}
	return token, jti, nil
}

func (i *Issuer) Revoke(ctx context.Context, jti string) error {
	return i.sessions.DeleteSession(ctx, jti)
}

// TokenFromRequest reads the handshake token from the "token" query
// parameter, falling back to an "Authorization: Bearer" header. Browsers
// cannot set headers on a WebSocket handshake, hence the query parameter.
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// HTTPStatus maps an authentication error to the handshake response code.
func HTTPStatus(err error) int {
	if errors.Is(err, ErrUserBanned) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrMissingToken) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrSessionNotFound) {
		return http.StatusUnauthorized
	}
	return http.StatusServiceUnavailable
}
