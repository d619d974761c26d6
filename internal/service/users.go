package service

import (
	"context"
	"fmt"

	"github.com/vsauschkin/payments-ledger/internal/models"
	"github.com/vsauschkin/payments-ledger/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UpdateUserInput carries a partial user update. Empty Email/FullName keep
// the stored values; an empty Password keeps the stored hash.
type UpdateUserInput struct {
	ID       int64
	Email    string
	Password string
	FullName string
	IsAdmin  bool
}

// CreateUser registers a new user with a hashed password.
func (s *Service) CreateUser(ctx context.Context, email, password, fullName string, isAdmin bool) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashedPassword),
		IsAdmin:      isAdmin,
	}

	err = s.store.InTx(ctx, func(r repository.Repository) error {
		return r.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("User created: %s", user.Email)
	return user, nil
}

// UpdateUser applies a partial update to an existing user.
func (s *Service) UpdateUser(ctx context.Context, input UpdateUserInput) error {
	err := s.store.InTx(ctx, func(r repository.Repository) error {
		user, err := r.FindUserByID(ctx, input.ID)
		if err != nil {
			return err
		}

		if input.Email != "" {
			user.Email = input.Email
		}
		if input.FullName != "" {
			user.FullName = input.FullName
		}
		if input.Password != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			user.PasswordHash = string(hashed)
		}
		user.IsAdmin = input.IsAdmin

		return r.UpdateUser(ctx, user)
	})
	if err != nil {
		return err
	}

	s.log.Infof("User updated: %d", input.ID)
	return nil
}

// DeleteUser removes a user and their accounts. Users with recorded
// payments cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(r repository.Repository) error {
		return r.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Infof("User deleted: %d", id)
	return nil
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.store.InTx(ctx, func(r repository.Repository) error {
		u, err := r.ListUsers(ctx)
		users = u
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
