package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	modelauth "github.com/symptomsync/healthai/backend/internal/model/auth"
	"github.com/symptomsync/healthai/backend/internal/service/auth"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signUpResponse covers both shapes GoTrue returns: a session when email
// confirmation is off, the bare user otherwise.
type signUpResponse struct {
	modelauth.Session
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (modelauth.Session, error) {
	var resp signUpResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, c.anonKey, credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return modelauth.Session{}, mapAuthError(err)
	}

	session := resp.Session
	if session.User.ID == "" {
		session.User = modelauth.User{ID: resp.ID, Email: resp.Email}
	}
	return session, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (modelauth.Session, error) {
	var session modelauth.Session
	query := url.Values{"grant_type": {"password"}}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, c.anonKey, credentials{Email: email, Password: password}, &session); err != nil {
		return modelauth.Session{}, mapAuthError(err)
	}
	return session, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return auth.ErrUnauthenticated
	}
	return mapAuthError(c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, accessToken, nil, nil))
}

func (c *Client) ResetPassword(ctx context.Context, email, redirectTo string) error {
	var query url.Values
	if redirectTo != "" {
		query = url.Values{"redirect_to": {redirectTo}}
	}
	return mapAuthError(c.do(ctx, http.MethodPost, "/auth/v1/recover", query, c.anonKey, map[string]string{"email": email}, nil))
}

func (c *Client) UpdatePassword(ctx context.Context, accessToken, password string) (modelauth.User, error) {
	if accessToken == "" {
		return modelauth.User{}, auth.ErrUnauthenticated
	}
	var user modelauth.User
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", nil, accessToken, map[string]string{"password": password}, &user); err != nil {
		return modelauth.User{}, mapAuthError(err)
	}
	return user, nil
}

// CurrentUser resolves accessToken. Any failure, including transport errors,
// is reported as ErrUnauthenticated by the session middleware.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (modelauth.User, error) {
	if accessToken == "" {
		return modelauth.User{}, auth.ErrUnauthenticated
	}
	var user modelauth.User
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, accessToken, nil, &user); err != nil {
		return modelauth.User{}, mapAuthError(err)
	}
	if user.ID == "" {
		return modelauth.User{}, auth.ErrUnauthenticated
	}
	return user, nil
}

func mapAuthError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	msg := strings.ToLower(apiErr.Message)
	switch {
	case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
		return errors.Join(auth.ErrUnauthenticated, err)
	case strings.Contains(msg, "already registered") || strings.Contains(msg, "already been registered"):
		return errors.Join(auth.ErrEmailTaken, err)
	case strings.Contains(msg, "invalid login credentials") || strings.Contains(msg, "invalid grant"):
		return errors.Join(auth.ErrInvalidCredentials, err)
	case strings.Contains(msg, "password"):
		return errors.Join(auth.ErrWeakPassword, err)
	default:
		return err
	}
}
