// Package memory is an in-process account store for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-account-api/internal/domain"
)

// Store keeps accounts and pending registrations in maps keyed by email.
// Every method copies values in and out so callers never share memory with the store.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	pending  map[string]domain.PendingAccount
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		pending:  make(map[string]domain.PendingAccount),
	}
}

func (s *Store) GetAccount(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[email]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return cloneAccount(a), nil
}

func (s *Store) SaveAccount(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Email]; !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	s.accounts[a.Email] = *cloneAccount(*a)
	return nil
}

func (s *Store) GetPending(_ context.Context, email string) (*domain.PendingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pending[email]
	if !ok {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) PutPending(_ context.Context, p *domain.PendingAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[p.Email]; ok {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	s.pending[p.Email] = *p
	return nil
}

// Promote creates a and deletes the pending record for a.Email in one step.
// code must still match the pending OTP.
func (s *Store) Promote(_ context.Context, a *domain.Account, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Email]; ok {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	p, ok := s.pending[a.Email]
	if !ok {
		return fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	if p.OTPCode != code {
		return fmt.Errorf("pending registration changed: %w", domain.ErrInvalidOTP)
	}
	s.accounts[a.Email] = *cloneAccount(*a)
	delete(s.pending, a.Email)
	return nil
}

func cloneAccount(a domain.Account) *domain.Account {
	if a.Address != nil {
		addr := *a.Address
		a.Address = &addr
	}
	if a.Challenge != nil {
		c := *a.Challenge
		a.Challenge = &c
	}
	return &a
}
