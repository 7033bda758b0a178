package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens. Subject carries the username.
type JWTClaims struct {
	UserID    int64    `json:"user_id"`
	Role      UserRole `json:"role"`
	Firstname string   `json:"firstname"`
	Lastname  string   `json:"lastname"`
	jwt.RegisteredClaims
}
