// Package auth provides credential primitives: bcrypt password storage and
// stateless HS256 bearer tokens. Token verification is signature + expiry
// only; activation checks happen in the middleware, which re-fetches the
// user row.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/svalekar/voterreg/internal/common"
	"github.com/svalekar/voterreg/internal/server/models"
)

// Claims embeds the registered claims plus the authenticated user's identity
// snapshot. The role claim is advisory; gates re-check the stored row.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64       `json:"uid"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

func GenerateToken(user *models.User, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies signature and expiry and returns the embedded claims.
// Expired tokens map to ErrTokenExpired, everything else to ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
