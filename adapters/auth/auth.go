// Package auth issues and verifies the bearer tokens used by the API.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// Role is the caller's permission set
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePartner Role = "partner"
)

// ParseRole validates a role name
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RolePartner:
		return r, nil
	default:
		return "", errors.Inputf("unknown role: %s", s)
	}
}

// Claims are the token claims
type Claims struct {
	Role      Role   `json:"role"`
	PartnerID string `json:"partner_id,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token service from the auth config
func NewTokens(cfg config.AuthConfig) *Tokens {
	return &Tokens{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL(),
		now:    time.Now,
	}
}

// Issue mints a token. Partner tokens must name the partner.
func (t *Tokens) Issue(role Role, partnerID string) (string, error) {
	subject := string(role)
	switch role {
	case RolePartner:
		if partnerID == "" {
			return "", errors.Input("partner tokens require a partner id")
		}
		subject = partnerID
	case RoleAdmin:
		partnerID = ""
	default:
		return "", errors.Inputf("unknown role: %s", role)
	}

	now := t.now()
	claims := Claims{
		Role:      role,
		PartnerID: partnerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(errors.TypeInternal, "failed to sign token", err)
	}
	return signed, nil
}

// Verify parses and validates a token
func (t *Tokens) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, errors.Wrap(errors.TypeUnauthorized, "invalid token", err)
	}
	if !parsed.Valid {
		return nil, errors.Unauthorized("invalid token")
	}
	if _, err := ParseRole(string(claims.Role)); err != nil {
		return nil, errors.Unauthorized("token carries an unknown role")
	}
	if claims.Role == RolePartner && claims.PartnerID == "" {
		return nil, errors.Unauthorized("partner token without partner id")
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
