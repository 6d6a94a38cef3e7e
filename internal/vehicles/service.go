package vehicles

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
	"github.com/VadoVates/autoservice/pkg/pagination"
)

// Input carries the writable vehicle fields.
type Input struct {
	CustomerID         uint
	Brand              string
	Model              string
	Year               *int
	RegistrationNumber string
	VIN                *string
}

// Service exposes the vehicle CRUD surface. Registration numbers are
// unique across the fleet.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Vehicle, error)
	Get(ctx context.Context, id uint) (*models.Vehicle, error)
	List(ctx context.Context, params pagination.Params) ([]models.Vehicle, error)
	Update(ctx context.Context, id uint, input Input) (*models.Vehicle, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

// NewService builds the vehicles service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Vehicle, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByRegistration(ctx, input.RegistrationNumber); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "vehicle with this registration number already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check registration")
	}

	vehicle := &models.Vehicle{
		CustomerID:         input.CustomerID,
		Brand:              input.Brand,
		Model:              input.Model,
		Year:               input.Year,
		RegistrationNumber: input.RegistrationNumber,
		VIN:                input.VIN,
	}
	if _, err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return s.Get(ctx, vehicle.ID)
}

func (s *service) Get(ctx context.Context, id uint) (*models.Vehicle, error) {
	vehicle, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("vehicle %d not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Vehicle, error) {
	vehicles, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return vehicles, nil
}

func (s *service) Update(ctx context.Context, id uint, input Input) (*models.Vehicle, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.RegistrationNumber != current.RegistrationNumber {
		if _, err := s.repo.FindByRegistration(ctx, input.RegistrationNumber); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "vehicle with this registration number already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check registration")
		}
	}

	updates := map[string]any{
		"customer_id":         input.CustomerID,
		"brand":               input.Brand,
		"model":               input.Model,
		"year":                input.Year,
		"registration_number": input.RegistrationNumber,
		"vin":                 input.VIN,
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	return s.Get(ctx, id)
}

// Delete removes a vehicle only when no orders reference it.
func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	orderCount, err := s.repo.CountOrders(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	if orderCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot remove vehicle with %d orders", orderCount))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
	}
	return nil
}

func (s *service) validate(ctx context.Context, input Input) error {
	if input.Brand == "" || input.Model == "" || input.RegistrationNumber == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "brand, model and registration number are required")
	}

	exists, err := s.repo.CustomerExists(ctx, input.CustomerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check customer")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return nil
}
