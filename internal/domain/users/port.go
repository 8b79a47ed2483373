package users

import "context"

// Repository port for account lookup
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}
