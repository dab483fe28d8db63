package auth

import (
	"crypto/subtle"
	"errors"
)

// ErrInvalidToken is returned when a presented token does not match.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenValidator validates a bearer token and returns the parsed claims.
// Middleware depends on this interface rather than a concrete scheme.
//
// The returned value is stored in request context via authctx.Set.
type TokenValidator interface {
	ValidateToken(token string) (any, error)
}

// TokenValidatorFunc adapts an ordinary function to the TokenValidator interface.
type TokenValidatorFunc func(token string) (any, error)

// ValidateToken implements TokenValidator.
func (f TokenValidatorFunc) ValidateToken(token string) (any, error) {
	return f(token)
}

// NewValidator creates a TokenValidator from a validation function, e.g.
//
//	validator := auth.NewValidator(jwtSvc.ValidatorFunc())
func NewValidator(fn func(string) (any, error)) TokenValidator {
	return TokenValidatorFunc(fn)
}

// StaticClaims is what a StaticToken validator puts in context.
type StaticClaims struct {
	Subject string
}

// StaticToken accepts exactly one shared secret.
func StaticToken(secret string) TokenValidator {
	want := []byte(secret)
	return TokenValidatorFunc(func(token string) (any, error) {
		if len(want) == 0 || subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			return nil, ErrInvalidToken
		}
		return StaticClaims{Subject: "static"}, nil
	})
}

// AnyOf tries each validator in order and returns the first success. When
// all fail, the last error is returned.
func AnyOf(validators ...TokenValidator) TokenValidator {
	return TokenValidatorFunc(func(token string) (any, error) {
		err := ErrInvalidToken
		for _, v := range validators {
			claims, verr := v.ValidateToken(token)
			if verr == nil {
				return claims, nil
			}
			err = verr
		}
		return nil, err
	})
}
