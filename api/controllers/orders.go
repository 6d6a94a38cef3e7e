package controllers

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/VadoVates/autoservice/api/responses"
	"github.com/VadoVates/autoservice/api/validators"
	"github.com/VadoVates/autoservice/internal/invoices"
	"github.com/VadoVates/autoservice/internal/orders"
	"github.com/VadoVates/autoservice/pkg/enums"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
	"github.com/VadoVates/autoservice/pkg/logger"
)

type orderCreateRequest struct {
	CustomerID    uint             `json:"customer_id" validate:"required"`
	VehicleID     uint             `json:"vehicle_id" validate:"required"`
	WorkStationID *uint            `json:"work_station_id,omitempty"`
	Description   string           `json:"description" validate:"required,min=1"`
	Priority      string           `json:"priority,omitempty" validate:"omitempty,oneof=normal high urgent"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost,omitempty"`
}

func (r orderCreateRequest) toInput() orders.CreateOrderInput {
	input := orders.CreateOrderInput{
		CustomerID:    r.CustomerID,
		VehicleID:     r.VehicleID,
		WorkStationID: r.WorkStationID,
		Description:   r.Description,
		Priority:      enums.OrderPriorityNormal,
	}
	if r.Priority != "" {
		input.Priority = enums.OrderPriority(r.Priority)
	}
	if r.EstimatedCost != nil {
		input.EstimatedCost = *r.EstimatedCost
	}
	return input
}

type orderUpdateRequest struct {
	Description   *string          `json:"description,omitempty" validate:"omitempty,min=1"`
	Priority      *string          `json:"priority,omitempty" validate:"omitempty,oneof=normal high urgent"`
	Status        *string          `json:"status,omitempty" validate:"omitempty,oneof=new in_progress waiting_for_parts completed invoiced"`
	WorkStationID *uint            `json:"work_station_id,omitempty"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost,omitempty"`
	FinalCost     *decimal.Decimal `json:"final_cost,omitempty"`
}

func (r orderUpdateRequest) toPatch() orders.Patch {
	patch := orders.Patch{
		Description:   r.Description,
		WorkStationID: r.WorkStationID,
		EstimatedCost: r.EstimatedCost,
		FinalCost:     r.FinalCost,
	}
	if r.Priority != nil {
		priority := enums.OrderPriority(*r.Priority)
		patch.Priority = &priority
	}
	if r.Status != nil {
		status := enums.OrderStatus(*r.Status)
		patch.Status = &status
	}
	return patch
}

type attachPartRequest struct {
	PartID            uint             `json:"part_id" validate:"required"`
	Quantity          int              `json:"quantity" validate:"required,gt=0"`
	UnitPriceOverride *decimal.Decimal `json:"unit_price,omitempty"`
}

type invoiceRequest struct {
	LaborCost decimal.Decimal `json:"labor_cost"`
	Notes     *string         `json:"notes,omitempty"`
}

// OrderCreate opens a repair order against an existing customer and vehicle.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload orderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderList returns orders sorted by priority then age, with optional
// status and customer filters.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		params, err := pagingParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters orders.ListFilters
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := r.URL.Query().Get("customer_id"); raw != "" {
			id, err := validators.ParseQueryInt(r, "customer_id", 0, 1, 1<<30)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			customerID := uint(id)
			filters.CustomerID = &customerID
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderUpdate patches mutable fields and drives the status lifecycle.
func OrderUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Update(r.Context(), id, payload.toPatch())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderDelete removes an order, returning attached parts to stock.
func OrderDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OrderAttachPart reserves stock and snapshots the unit price.
func OrderAttachPart(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload attachPartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderPart, err := svc.AttachPart(r.Context(), id, orders.AttachPartInput{
			PartID:            payload.PartID,
			Quantity:          payload.Quantity,
			UnitPriceOverride: payload.UnitPriceOverride,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderPart)
	}
}

func OrderListParts(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListParts(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderDetachPart removes an order line and returns its quantity to stock.
func OrderDetachPart(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderPartID, err := validators.ParseIDParam(r, "orderPartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DetachPart(r.Context(), id, orderPartID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// OrderQueue returns the station-by-station view of the shop floor.
func OrderQueue(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		queue, err := svc.Queue(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, queue)
	}
}

// OrderGenerateInvoice bills a completed order and streams the PDF.
func OrderGenerateInvoice(svc orders.Service, renderer *invoices.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || renderer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload invoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := svc.GenerateInvoice(r.Context(), id, orders.InvoiceInput{
			LaborCost: payload.LaborCost,
			Notes:     payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		document, err := renderer.Render(data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice"))
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%s.pdf", data.Invoice.InvoiceNumber))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(document)
	}
}

// OrderGetInvoice returns the invoice metadata for an already billed order.
func OrderGetInvoice(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.GetInvoice(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}
