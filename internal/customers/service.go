package customers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
	"github.com/VadoVates/autoservice/pkg/pagination"
)

// Input carries the writable customer fields, used for create and full
// update alike.
type Input struct {
	Name    string
	Phone   *string
	Email   *string
	Address *string
}

// Service exposes the customer CRUD surface with referential delete guards.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Customer, error)
	Get(ctx context.Context, id uint) (*models.Customer, error)
	List(ctx context.Context, params pagination.Params) ([]models.Customer, error)
	ListVehicles(ctx context.Context, id uint) ([]models.Vehicle, error)
	Update(ctx context.Context, id uint, input Input) (*models.Customer, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

// NewService builds the customers service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Customer, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	customer := &models.Customer{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
	}
	if _, err := s.repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return customer, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer %d not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Customer, error) {
	customers, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return customers, nil
}

func (s *service) ListVehicles(ctx context.Context, id uint) ([]models.Vehicle, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	vehicles, err := s.repo.ListVehicles(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer vehicles")
	}
	return vehicles, nil
}

func (s *service) Update(ctx context.Context, id uint, input Input) (*models.Customer, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":    input.Name,
		"phone":   input.Phone,
		"email":   input.Email,
		"address": input.Address,
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return s.Get(ctx, id)
}

// Delete removes a customer only when no active orders and no vehicles
// reference them.
func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	activeOrders, err := s.repo.CountActiveOrders(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active orders")
	}
	if activeOrders > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot remove customer with %d active orders", activeOrders))
	}

	vehicles, err := s.repo.CountVehicles(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vehicles")
	}
	if vehicles > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot remove customer with %d vehicles", vehicles))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	return nil
}
