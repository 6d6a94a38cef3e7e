package controllers

import (
	"net/http"

	"github.com/VadoVates/autoservice/api/responses"
	"github.com/VadoVates/autoservice/api/validators"
	"github.com/VadoVates/autoservice/internal/workstations"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
	"github.com/VadoVates/autoservice/pkg/logger"
)

type workStationRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// WorkStationList returns every station, active or not.
func WorkStationList(svc workstations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "work station service unavailable"))
			return
		}

		stations, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stations)
	}
}

// WorkStationUpdate renames a station or toggles availability.
func WorkStationUpdate(svc workstations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "work station service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload workStationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		station, err := svc.Update(r.Context(), id, workstations.Patch{
			Name:     payload.Name,
			IsActive: payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, station)
	}
}
