// Package users keeps the mock API's accounts in memory.
package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
)

type Service struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]*User
	nextID  int
	cost    int
}

// NewService creates an empty store. cost is the bcrypt cost; values below
// bcrypt.MinCost use bcrypt.DefaultCost.
func NewService(cost int) *Service {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
		nextID:  1,
		cost:    cost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(_ context.Context, in NewUser) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	email := normalizeEmail(in.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}
	u := &User{
		ID:           strconv.Itoa(s.nextID),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Avatar:       in.Avatar,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	s.nextID++
	s.byID[u.ID] = u
	s.byEmail[email] = u
	return u, nil
}

// Authenticate checks the password. Unknown emails and wrong passwords
// give the same error.
func (s *Service) Authenticate(_ context.Context, email, password string) (*User, error) {
	s.mu.RLock()
	u, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}
