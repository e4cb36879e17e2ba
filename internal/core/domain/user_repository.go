package domain

import "context"

type UserRepository interface {
	// Create persists a new user account.
	Create(ctx context.Context, user *User) error

	// GetByEmail retrieves a user by their (lowercased) email address.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*User, error)
}
