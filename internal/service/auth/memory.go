package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/symptomsync/healthai/backend/internal/model/auth"
)

type account struct {
	user     auth.User
	password [sha256.Size]byte
}

// MemoryProvider is an in-process identity provider for local development.
// Accounts and tokens disappear on restart.
type MemoryProvider struct {
	mu       sync.RWMutex
	accounts map[string]*account // by email
	tokens   map[string]string   // access token -> email
	resets   []string
}

// NewMemoryProvider returns an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
	}
}

func (p *MemoryProvider) SignUp(_ context.Context, email, password string) (auth.Session, error) {
	email = normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return auth.Session{}, ErrEmailTaken
	}

	acc := &account{
		user: auth.User{
			ID:        uuid.NewString(),
			Email:     email,
			CreatedAt: time.Now().UTC(),
		},
		password: sha256.Sum256([]byte(password)),
	}
	p.accounts[email] = acc
	return p.issueLocked(acc), nil
}

func (p *MemoryProvider) SignIn(_ context.Context, email, password string) (auth.Session, error) {
	email = normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.accounts[email]
	if !ok {
		return auth.Session{}, ErrInvalidCredentials
	}
	sum := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(sum[:], acc.password[:]) != 1 {
		return auth.Session{}, ErrInvalidCredentials
	}
	return p.issueLocked(acc), nil
}

func (p *MemoryProvider) SignOut(_ context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.tokens[accessToken]; !ok {
		return ErrUnauthenticated
	}
	delete(p.tokens, accessToken)
	return nil
}

// ResetPassword records the request; no email is sent.
func (p *MemoryProvider) ResetPassword(_ context.Context, email, redirectTo string) error {
	email = normalizeEmail(email)

	p.mu.Lock()
	p.resets = append(p.resets, email)
	p.mu.Unlock()

	slog.Info("password reset requested", "component", "auth", "email", email, "redirect", redirectTo)
	return nil
}

func (p *MemoryProvider) UpdatePassword(_ context.Context, accessToken, password string) (auth.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, err := p.lookupLocked(accessToken)
	if err != nil {
		return auth.User{}, err
	}
	acc.password = sha256.Sum256([]byte(password))
	return acc.user, nil
}

func (p *MemoryProvider) CurrentUser(_ context.Context, accessToken string) (auth.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	acc, err := p.lookupLocked(accessToken)
	if err != nil {
		return auth.User{}, err
	}
	return acc.user, nil
}

// ResetRequests returns the emails that asked for a reset, oldest first.
func (p *MemoryProvider) ResetRequests() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.resets...)
}

func (p *MemoryProvider) lookupLocked(accessToken string) (*account, error) {
	email, ok := p.tokens[accessToken]
	if !ok || accessToken == "" {
		return nil, ErrUnauthenticated
	}
	acc, ok := p.accounts[email]
	if !ok {
		return nil, ErrUnauthenticated
	}
	return acc, nil
}

func (p *MemoryProvider) issueLocked(acc *account) auth.Session {
	token := uuid.NewString()
	p.tokens[token] = acc.user.Email
	return auth.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   3600,
		User:        acc.user,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
