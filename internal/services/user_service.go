package services

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// Payment methods the store accepts.
var PaymentMethods = []string{"PayPal", "Stripe", "CashOnDelivery"}

// DefaultPaymentMethod is used when a user has not chosen one explicitly.
const DefaultPaymentMethod = "PayPal"

// UserService handles profile updates and the admin user surface.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	return s.repo.GetByID(id)
}

// GetAllUsers retrieves a page of users.
func (s *UserService) GetAllUsers(page, pageSize int) ([]models.User, int64, error) {
	return s.repo.GetAll(page, pageSize)
}

// UpdateAddress sets the user's shipping address. Orders created afterwards
// freeze a copy of it.
func (s *UserService) UpdateAddress(userID string, address models.ShippingAddress) error {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return err
	}
	user.Address = &address
	return s.repo.Update(user)
}

// UpdatePaymentMethod sets the user's chosen payment method, which must be
// one the store accepts.
func (s *UserService) UpdatePaymentMethod(userID, method string) error {
	valid := false
	for _, m := range PaymentMethods {
		if m == method {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%s: %w", method, ErrInvalidPaymentMethod)
	}

	user, err := s.repo.GetByID(userID)
	if err != nil {
		return err
	}
	user.PaymentMethod = method
	return s.repo.Update(user)
}

// UpdateUser lets an admin change a user's name and role.
func (s *UserService) UpdateUser(userID, name, role string) (*models.User, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		user.Name = name
	}
	if role != "" {
		user.Role = role
	}
	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user account.
func (s *UserService) DeleteUser(id string) error {
	return s.repo.Delete(id)
}
