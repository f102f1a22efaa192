// Package auth resolves sessions and runs the account flows against the
// configured identity provider.
package auth

import (
	"context"
	"errors"
	"unicode"

	"github.com/symptomsync/healthai/backend/internal/model/auth"
)

var (
	ErrUnauthenticated    = errors.New("no active session")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain uppercase, lowercase, and number")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// LoginRoute is where unauthenticated visitors are sent.
const LoginRoute = "/auth/login"

// Resolver returns the user behind an access token.
type Resolver interface {
	CurrentUser(ctx context.Context, accessToken string) (auth.User, error)
}

// Provider is an identity provider supporting the account flows.
type Provider interface {
	Resolver
	SignUp(ctx context.Context, email, password string) (auth.Session, error)
	SignIn(ctx context.Context, email, password string) (auth.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPassword(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, accessToken, password string) (auth.User, error)
}

// ValidatePassword enforces the sign-up password policy.
func ValidatePassword(password, confirm string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return ErrWeakPassword
	}

	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
