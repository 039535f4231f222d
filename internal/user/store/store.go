// Package store persists users in the key-value data store under users/<email>.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"smartstore/internal/datastore"
	"smartstore/internal/user/models"
	"smartstore/pkg/platform/sentinel"
)

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = sentinel.ErrNotFound

// ErrAlreadyUsed is returned when creating a user whose email is taken.
var ErrAlreadyUsed = sentinel.ErrAlreadyUsed

// Store is a user repository over a DataStore. The mutex makes
// check-then-create atomic within the process.
type Store struct {
	mu sync.Mutex
	ds datastore.DataStore
}

func New(ds datastore.DataStore) *Store {
	return &Store{ds: ds}
}

func key(email string) string {
	return datastore.Key(datastore.PrefixUsers, email)
}

// Create stores a new user, failing with ErrAlreadyUsed if the email exists.
func (s *Store) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exists, err := s.ds.ContainsKey(ctx, key(u.Email))
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if exists {
		return ErrAlreadyUsed
	}
	return s.put(ctx, u)
}

// Save overwrites an existing user, failing with ErrNotFound if it was
// deleted in the meantime.
func (s *Store) Save(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exists, err := s.ds.ContainsKey(ctx, key(u.Email))
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return s.put(ctx, u)
}

func (s *Store) put(ctx context.Context, u *models.User) error {
	b, err := datastore.Encode(u)
	if err != nil {
		return err
	}
	if err := s.ds.Put(ctx, key(u.Email), b); err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	b, err := s.ds.Get(ctx, key(email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	var u models.User
	if err := datastore.Decode(b, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exists, err := s.ds.ContainsKey(ctx, key(email))
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	if err := s.ds.Remove(ctx, key(email)); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	return nil
}

// ListAll returns every user ordered by email.
func (s *Store) ListAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := datastore.LoadAll(ctx, s.ds, datastore.PrefixUsers, func(_ string, value []byte) error {
		var u models.User
		if err := datastore.Decode(value, &u); err != nil {
			return err
		}
		users = append(users, &u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}
