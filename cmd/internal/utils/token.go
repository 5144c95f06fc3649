package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// TokenDataKey is the echo context key holding the caller's *TokenData.
const TokenDataKey = "token_data"

var ErrMissingTokenData = errors.New("no token data in request context")

// TokenData is the identity carried by a session token.
type TokenData struct {
	Sub    string `json:"sub"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type sessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(data *TokenData) (string, error) {
	now := t.now()
	claims := &sessionClaims{
		UserID: data.UserID,
		Email:  data.Email,
		Role:   data.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   data.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) Parse(raw string) (*TokenData, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	if claims.UserID == "" {
		return nil, errors.New("session token has no user id")
	}
	return &TokenData{Sub: claims.Subject, UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// ParseTokenDataCtx returns the identity stored by the auth middleware.
func ParseTokenDataCtx(c echo.Context) (*TokenData, error) {
	data, ok := c.Get(TokenDataKey).(*TokenData)
	if !ok || data == nil {
		return nil, ErrMissingTokenData
	}
	return data, nil
}
