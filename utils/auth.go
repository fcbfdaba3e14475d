// utils/auth.go
package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is lowered by tests.
var BcryptCost = 12

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Claims is the payload of both account tokens (sub = user id) and guest
// booking tokens (sub = booking id, role = GUEST).
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret     []byte
	accountTTL time.Duration
	guestTTL   time.Duration
}

func NewTokenManager(secret string, accountTTL, guestTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), accountTTL: accountTTL, guestTTL: guestTTL}
}

func (m *TokenManager) AccountTTL() time.Duration { return m.accountTTL }

// GenerateToken signs an account token.
func (m *TokenManager) GenerateToken(userID, role string) (string, error) {
	return m.sign(userID, role, m.accountTTL)
}

// GenerateGuestToken signs a token that grants access to a single booking.
func (m *TokenManager) GenerateGuestToken(bookingID, role string) (string, error) {
	return m.sign(bookingID, role, m.guestTTL)
}

func (m *TokenManager) sign(subject, role string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("JWT_SECRET not set")
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("missing token")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
