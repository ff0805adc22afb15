package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	tokenTypeAccess = "access"
	issuer          = "bookstore"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("not an access token")
)

// Claims của access token do auth service phát hành
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// UserUUID parse user_id claim
func (c *Claims) UserUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad user_id", ErrInvalidToken)
	}
	return id, nil
}

// Manager verify token HS256. Storefront không login, chỉ cần secret chung với auth service.
type Manager struct {
	secret []byte
	expiry time.Duration
	parser *jwt.Parser
}

func NewManager(secret string, accessExpiryMinutes int) *Manager {
	return &Manager{
		secret: []byte(secret),
		expiry: time.Duration(accessExpiryMinutes) * time.Minute,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// GenerateAccessToken dùng cho tooling nội bộ và test
func (m *Manager) GenerateAccessToken(userID, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ValidateAccessToken kiểm tra chữ ký, issuer, hạn và loại token
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Type != tokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
