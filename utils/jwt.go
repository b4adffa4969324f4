package utils

import (
	"fmt"
	"os"
	"time"

	"catalog-backend/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessIssuer  = "catalog-backend"
	refreshIssuer = "catalog-refresh"
)

type Claims struct {
	UserID       uuid.UUID `json:"user_id"`
	HumanID      string    `json:"human_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	TokenVersion int       `json:"token_version"`
	jwt.RegisteredClaims
}

// TokenSubject is the identity a token is issued for.
type TokenSubject struct {
	UserID       uuid.UUID
	HumanID      string
	Email        string
	Role         string
	TokenVersion int
}

func getJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("FATAL: JWT_SECRET environment variable is not set. Refusing to start with an insecure configuration.")
	}
	return secret
}

func getRefreshSecret() string {
	if secret := os.Getenv("JWT_REFRESH_SECRET"); secret != "" {
		return secret
	}
	return getJWTSecret()
}

func sign(sub TokenSubject, secret, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       sub.UserID,
		HumanID:      sub.HumanID,
		Email:        sub.Email,
		Role:         sub.Role,
		TokenVersion: sub.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func GenerateToken(sub TokenSubject) (string, error) {
	return sign(sub, getJWTSecret(), accessIssuer, config.GetEnvDuration("JWT_ACCESS_TTL", 2*time.Hour))
}

func GenerateRefreshToken(sub TokenSubject) (string, error) {
	return sign(sub, getRefreshSecret(), refreshIssuer, config.GetEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour))
}

func parse(tokenString, secret, issuer string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// ValidateToken accepts access tokens only.
func ValidateToken(tokenString string) (*Claims, error) {
	return parse(tokenString, getJWTSecret(), accessIssuer)
}

// ValidateRefreshToken accepts refresh tokens only.
func ValidateRefreshToken(tokenString string) (*Claims, error) {
	return parse(tokenString, getRefreshSecret(), refreshIssuer)
}
