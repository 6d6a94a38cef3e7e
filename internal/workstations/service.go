package workstations

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
)

// Patch carries the optional updates for a work station.
type Patch struct {
	Name     *string
	IsActive *bool
}

// Service exposes the work station surface. Stations are seeded by
// migration, so there is no create or delete here.
type Service interface {
	Get(ctx context.Context, id uint) (*models.WorkStation, error)
	List(ctx context.Context) ([]models.WorkStation, error)
	Update(ctx context.Context, id uint, patch Patch) (*models.WorkStation, error)
}

type service struct {
	repo Repository
}

// NewService builds the work station service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("work station repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.WorkStation, error) {
	station, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("work station %d not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load work station")
	}
	return station, nil
}

func (s *service) List(ctx context.Context) ([]models.WorkStation, error) {
	stations, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list work stations")
	}
	return stations, nil
}

// Update renames a station or toggles its availability. Deactivating a
// station with orders still assigned is refused so the queue never points
// at an inactive bay.
func (s *service) Update(ctx context.Context, id uint, patch Patch) (*models.WorkStation, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "work station name cannot be empty")
		}
		updates["name"] = *patch.Name
	}
	if patch.IsActive != nil {
		if !*patch.IsActive {
			active, err := s.repo.CountActiveOrders(ctx, id)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count station orders")
			}
			if active > 0 {
				return nil, pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("cannot deactivate work station with %d active orders", active))
			}
		}
		updates["is_active"] = *patch.IsActive
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update work station")
	}
	return s.Get(ctx, id)
}
