// Package auth holds the single configured console credential and the signed-in operator.
// It gates the console UI only and is not a security boundary.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-console/internal/config"
	"github.com/iyhunko/inventory-console/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned by Login for a wrong username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotAuthenticated is returned when no operator is signed in.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Gate checks credentials against one configured account and remembers who is signed in.
type Gate struct {
	username string
	hash     []byte

	mu      sync.RWMutex
	current *model.User
	now     func() time.Time
}

// NewGate builds a gate from conf. A bcrypt hash wins over a plain password, which is hashed here.
func NewGate(conf config.Auth) (*Gate, error) {
	if conf.Username == "" {
		return nil, fmt.Errorf("%w for key: %s", config.ErrMissingConfig, config.AuthUsernameEnv)
	}

	hash := []byte(conf.PasswordHash)
	if len(hash) == 0 {
		if conf.Password == "" {
			return nil, fmt.Errorf("%w for key: %s", config.ErrMissingConfig, config.AuthPasswordEnv)
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(conf.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}

	return &Gate{username: conf.Username, hash: hash, now: time.Now}, nil
}

// Login signs the operator in. A previous session is replaced.
func (g *Gate) Login(username, password string) (*model.User, error) {
	if username != g.username {
		slog.Warn("login rejected", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		slog.Warn("login rejected", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	user := &model.User{
		Username:   username,
		Token:      uuid.NewString(),
		LoggedInAt: g.now(),
	}

	g.mu.Lock()
	g.current = user
	g.mu.Unlock()

	slog.Info("operator signed in", slog.String("username", username))
	u := *user
	return &u, nil
}

// Current returns the signed-in operator.
func (g *Gate) Current() (*model.User, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return nil, ErrNotAuthenticated
	}
	u := *g.current
	return &u, nil
}

// IsAuthenticated reports whether an operator is signed in.
func (g *Gate) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current != nil
}

// Logout forgets the signed-in operator.
func (g *Gate) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != nil {
		slog.Info("operator signed out", slog.String("username", g.current.Username))
	}
	g.current = nil
}
