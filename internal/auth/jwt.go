// Package auth validates the HS256 bearer tokens issued by the storefront's
// identity service.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MuthuprabhaT/BlendCart/pkg/middleware"
)

// Roles carried in the "role" claim.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// ErrMissingSubject is returned for tokens carrying neither user_id nor sub.
var ErrMissingSubject = errors.New("token has no subject")

// NewValidator returns a middleware.TokenValidator accepting HS256 tokens
// signed with secret. The user is read from "user_id", falling back to "sub".
// A token without a role is treated as a customer.
func NewValidator(secret string) middleware.TokenValidator {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(tokenString string) (*middleware.Claims, error) {
		token, err := parser.Parse(tokenString, func(*jwt.Token) (any, error) {
			return key, nil
		})
		if err != nil {
			return nil, fmt.Errorf("parse token: %w", err)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return nil, errors.New("invalid token claims")
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			userID, _ = claims["sub"].(string)
		}
		if userID == "" {
			return nil, ErrMissingSubject
		}

		name, _ := claims["name"].(string)
		role, _ := claims["role"].(string)
		if role == "" {
			role = RoleCustomer
		}

		return &middleware.Claims{UserID: userID, Name: name, Role: role}, nil
	}
}
