// Package provider implements the identity-provider contract against a local
// account registry with signed session tokens. It stands in for the hosted
// identity service in development and self-contained deployments; the session
// controller only ever sees the IdentityProvider interface.
package provider

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chemconsole/internal/identity/models"
	"chemconsole/internal/identity/token"
	"chemconsole/internal/sentinel"
	dErrors "chemconsole/pkg/domain-errors"
)

// Account is a registered dev identity. Passwords are held as bcrypt
// hashes; this registry backs local logins only, never production
// credentials.
type Account struct {
	SubjectID    string
	Email        string
	passwordHash []byte
	Claims       models.Claims
}

// Provider is an in-process identity provider. It holds at most one active
// session and fans session-change events out to subscribers, matching the
// notification contract of the hosted service.
type Provider struct {
	tokens *token.Service
	logger *slog.Logger

	mu          sync.RWMutex
	accounts    map[string]Account
	current     *models.Session
	subscribers map[int]func(models.SessionEvent)
	nextSubID   int
}

// Option configures the Provider.
type Option func(*Provider)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// New constructs an empty provider. Register accounts with AddAccount.
func New(tokens *token.Service, opts ...Option) *Provider {
	p := &Provider{
		tokens:      tokens,
		accounts:    make(map[string]Account),
		subscribers: make(map[int]func(models.SessionEvent)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddAccount registers a sign-in identity. The subject id is generated when
// empty. Email lookup is case-insensitive.
func (p *Provider) AddAccount(email, password string, claims models.Claims) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	subjectID := "dev-" + uuid.New().String()
	key := strings.ToLower(strings.TrimSpace(email))
	if existing, ok := p.accounts[key]; ok {
		subjectID = existing.SubjectID
	}
	if claims.Email == "" {
		claims.Email = key
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		// Only possible for passwords over 72 bytes; register an
		// unmatchable hash rather than a usable account.
		p.logger.Warn("account password rejected", "email", key, "error", err)
		hash = nil
	}
	p.accounts[key] = Account{
		SubjectID:    subjectID,
		Email:        key,
		passwordHash: hash,
		Claims:       claims,
	}
	return subjectID
}

// GetCurrentSession returns the active session.
// Error Contract: sentinel.ErrNoSession when nobody is signed in or the
// session has expired.
func (p *Provider) GetCurrentSession(_ context.Context) (*models.Session, error) {
	p.mu.RLock()
	current := p.current
	p.mu.RUnlock()

	if current == nil {
		return nil, sentinel.ErrNoSession
	}
	if time.Now().After(current.ExpiresAt) {
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
		return nil, sentinel.ErrNoSession
	}
	copied := *current
	return &copied, nil
}

// SignIn validates credentials, issues a session token, and notifies
// subscribers. Unknown emails and wrong passwords produce the same error so
// callers cannot probe for registered accounts.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	p.mu.RLock()
	account, ok := p.accounts[key]
	p.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(account.passwordHash, []byte(password)) != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	claims := account.Claims
	signed, expiresAt, err := p.tokens.Generate(
		account.SubjectID, claims.Email, claims.FirstName, claims.LastName, claims.Role, claims.CompanyID,
	)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "session token generation failed")
	}

	sess := &models.Session{
		SubjectID: account.SubjectID,
		Email:     claims.Email,
		Claims:    claims,
		Token:     signed,
		ExpiresAt: expiresAt,
	}

	p.mu.Lock()
	p.current = sess
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "session issued",
		"subject_id", account.SubjectID,
		"event", "session_issued",
		"log_type", "audit",
	)
	p.notify(models.SessionEvent{Type: models.EventSignedIn, Session: sess})
	return sess, nil
}

// SignOut clears the active session and notifies subscribers.
// Error Contract: sentinel.ErrNoSession when nobody is signed in.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	had := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if !had {
		return sentinel.ErrNoSession
	}
	p.logger.InfoContext(ctx, "session cleared",
		"event", "session_cleared",
		"log_type", "audit",
	)
	p.notify(models.SessionEvent{Type: models.EventSignedOut})
	return nil
}

// OnSessionChange registers a change callback and returns its unsubscribe
// function. The current session, if any, is replayed as an initial event so
// late subscribers converge on the same state.
func (p *Provider) OnSessionChange(fn func(models.SessionEvent)) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	current := p.current
	p.mu.Unlock()

	if current != nil {
		copied := *current
		fn(models.SessionEvent{Type: models.EventInitial, Session: &copied})
	}

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// ValidateSessionToken verifies a bearer token independent of the provider's
// in-memory session, so stateless API calls work across process restarts.
func (p *Provider) ValidateSessionToken(tokenString string) (*token.SessionTokenClaims, error) {
	return p.tokens.Validate(tokenString)
}

func (p *Provider) notify(ev models.SessionEvent) {
	p.mu.RLock()
	fns := make([]func(models.SessionEvent), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
