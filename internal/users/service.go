package users

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/prime-apparel/backend/internal/shared"
)

// Service wraps user management business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput describes an account registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Company   string
	Role      Role
}

// Register creates a new account. Role defaults to BUYER when blank;
// privileged roles are only assignable by an admin caller.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return User{}, shared.ErrValidation
	}
	role := input.Role
	if role == "" {
		role = RoleBuyer
	}
	if !role.Valid() {
		return User{}, shared.ErrValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, User{
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		Phone:        input.Phone,
		Company:      input.Company,
		PasswordHash: string(hash),
		IsActive:     true,
	})
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, shared.ErrValidation
	}
	return s.repo.FindByID(ctx, id)
}

// List returns users matching the filters.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]User, int, error) {
	return s.repo.List(ctx, filters)
}

// UpdateProfile changes the mutable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, id int64, firstName, lastName, phone, company string) error {
	if id <= 0 {
		return shared.ErrValidation
	}
	return s.repo.UpdateProfile(ctx, id, firstName, lastName, phone, company)
}
