package services

import (
	"context"
	"fmt"
	"log/slog"

	"orderdesk/internal/common"
	"orderdesk/internal/models"
	"orderdesk/internal/repositories"
)

// CustomerService defines customer operations
type CustomerService interface {
	CreateCustomer(ctx context.Context, input models.CustomerInput) (*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, input models.CustomerInput) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

type customerService struct {
	customerRepo repositories.CustomerRepository
}

func NewCustomerService(customerRepo repositories.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) CreateCustomer(ctx context.Context, input models.CustomerInput) (*models.Customer, error) {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return nil, err
	}
	customer := &models.Customer{Name: input.Name, Email: input.Email}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.customerRepo.List(ctx)
}

func (s *customerService) UpdateCustomer(ctx context.Context, id int64, input models.CustomerInput) (*models.Customer, error) {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return nil, err
	}
	customer := &models.Customer{ID: id, Name: input.Name, Email: input.Email}
	found, err := s.customerRepo.Update(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	if !found {
		return nil, common.ErrNotFound
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id int64) error {
	found, err := s.customerRepo.Delete(ctx, id)
	if common.IsForeignKeyViolation(err) {
		slog.InfoContext(ctx, "customer still referenced by orders", "customer_id", id)
		return fmt.Errorf("%w: customer %d has orders", common.ErrConflict, id)
	}
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if !found {
		return common.ErrNotFound
	}
	return nil
}
