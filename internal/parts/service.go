package parts

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
	"github.com/VadoVates/autoservice/pkg/pagination"
)

// Input carries the writable part fields.
type Input struct {
	Code          string
	Name          string
	Description   *string
	Price         decimal.Decimal
	StockQuantity int
}

// StockAdjustment is the result of a signed stock change.
type StockAdjustment struct {
	Part           models.Part `json:"part"`
	QuantityChange int         `json:"quantity_change"`
}

// Service exposes the parts inventory surface: CRUD, search, and guarded
// stock adjustments.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Part, error)
	Get(ctx context.Context, id uint) (*models.Part, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Part, error)
	Update(ctx context.Context, id uint, input Input) (*models.Part, error)
	Delete(ctx context.Context, id uint) error
	AdjustStock(ctx context.Context, id uint, change int) (*StockAdjustment, error)
}

type service struct {
	repo Repository
}

// NewService builds the parts service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("parts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Part, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByCode(ctx, input.Code); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "part with this code already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check part code")
	}

	part := &models.Part{
		Code:          input.Code,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
	}
	if _, err := s.repo.Create(ctx, part); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create part")
	}
	return part, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Part, error) {
	part, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("part %d not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load part")
	}
	return part, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Part, error) {
	parts, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parts")
	}
	return parts, nil
}

func (s *service) Update(ctx context.Context, id uint, input Input) (*models.Part, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Code != current.Code {
		if _, err := s.repo.FindByCode(ctx, input.Code); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "part with this code already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check part code")
		}
	}

	updates := map[string]any{
		"code":           input.Code,
		"name":           input.Name,
		"description":    input.Description,
		"price":          input.Price,
		"stock_quantity": input.StockQuantity,
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update part")
	}
	return s.Get(ctx, id)
}

// Delete removes a part only when no order line references it.
func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	references, err := s.repo.CountOrderReferences(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count part references")
	}
	if references > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot delete part used in %d orders", references))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete part")
	}
	return nil
}

// AdjustStock applies a signed quantity change, never letting stock dip
// below zero.
func (s *service) AdjustStock(ctx context.Context, id uint, change int) (*StockAdjustment, error) {
	part, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	adjusted, err := s.repo.AdjustStock(ctx, id, change)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}
	if !adjusted {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot reduce stock below 0 (current: %d, change: %d)", part.StockQuantity, change))
	}

	reloaded, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StockAdjustment{Part: *reloaded, QuantityChange: change}, nil
}

func validate(input Input) error {
	if input.Code == "" || input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code and name are required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	return nil
}
