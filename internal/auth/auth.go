// Package auth authenticates bearer tokens and carries the caller through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	// RoleAdmin records invoices, payments and the parties they reference.
	RoleAdmin Role = "admin"
	// RoleUser reads its own records and changes none.
	RoleUser Role = "user"
	// RoleCA is the chartered accountant: reads every record, changes none.
	RoleCA Role = "ca"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser, RoleCA:
		return r, nil
	}

	return "", fmt.Errorf("unknown role %q", s)
}

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	// State is the caller's business state, used as the issuer state for GST.
	State string
}

// Owner scopes listings: nil for accountants, the caller otherwise.
func (p Principal) Owner() *uuid.UUID {
	if p.Role == RoleCA {
		return nil
	}

	return new(p.UserID)
}

func (p Principal) CanView(createdBy uuid.UUID) bool {
	return p.Role == RoleCA || createdBy == p.UserID
}

// CanModify reports whether the caller may change a record. Only admins
// write, and only their own records.
func (p Principal) CanModify(createdBy uuid.UUID) bool {
	return p.Role == RoleAdmin && createdBy == p.UserID
}

type Claims struct {
	jwt.RegisteredClaims
	Role  Role   `json:"role"`
	State string `json:"state,omitempty"`
}

type Authenticator struct {
	secret       []byte
	defaultState string
	now          func() time.Time
}

// NewAuthenticator verifies HS256 tokens signed with secret. Tokens without a
// state claim get defaultState.
func NewAuthenticator(secret, defaultState string) *Authenticator {
	return &Authenticator{secret: []byte(secret), defaultState: defaultState, now: time.Now}
}

// Issue signs a token for p valid for ttl.
func (a *Authenticator) Issue(p Principal, ttl time.Duration) (string, error) {
	now := a.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:  p.Role,
		State: p.State,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func (a *Authenticator) Verify(token string) (Principal, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	p := Principal{UserID: id, Role: claims.Role, State: claims.State}
	if p.Role == "" {
		p.Role = RoleUser
	}

	if _, err := ParseRole(string(p.Role)); err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if p.State == "" {
		p.State = a.defaultState
	}

	return p, nil
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearer(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		p, err := a.Verify(token)
		if err != nil {
			http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// AdminWrites rejects every write that does not come from an admin.
func AdminWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if safeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if p, ok := FromContext(r.Context()); !ok || p.Role != RoleAdmin {
			http.Error(w, "only admins may change records", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

func bearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")

	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}

	return strings.TrimSpace(token), nil
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
