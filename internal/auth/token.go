// Package auth issues and checks the optional join tokens guarding /ws.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid join token")

// JoinClaims restrict a token to one room when Room is set.
type JoinClaims struct {
	Room string `json:"room,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs an HS256 token valid for ttl.
func Issue(secret, subject, room string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JoinClaims{
		Room: room,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign join token: %w", err)
	}
	return signed, nil
}

func Verify(secret, raw string) (*JoinClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &JoinClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*JoinClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AllowsRoom reports whether the token may join room.
func (c *JoinClaims) AllowsRoom(room string) bool {
	return c.Room == "" || c.Room == room
}
