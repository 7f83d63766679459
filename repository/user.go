package repository

import (
	"context"

	"github.com/volunteerhub/auth-service/domain"
)

// UserRepository is the credential store consumed by the auth workflow.
// GetByEmail and GetByID return domain.ErrUserNotFound when no record
// matches. Create returns domain.ErrEmailTaken when the email uniqueness
// constraint is violated at the storage layer.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}
