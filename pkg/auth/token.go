package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/empresasintegra/leykarin/pkg/model"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
	AdminID    string `json:"admin_id"`
	Username   string `json:"username"`
	Superuser  bool   `json:"superuser"`
	CategoryID string `json:"category_id,omitempty"`
}

type TokenManager struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenManager(signingKey []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{signingKey: signingKey, ttl: ttl}
}

func (m *TokenManager) Generate(admin *model.Admin) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   admin.ID.String(),
			Issuer:    "leykarin",
		},
		AdminID:   admin.ID.String(),
		Username:  admin.Username,
		Superuser: admin.Superuser,
	}
	if admin.CategoryID != nil {
		claims.CategoryID = admin.CategoryID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
