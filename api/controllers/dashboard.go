package controllers

import (
	"net/http"

	"github.com/VadoVates/autoservice/api/responses"
	"github.com/VadoVates/autoservice/internal/dashboard"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
	"github.com/VadoVates/autoservice/pkg/logger"
)

// DashboardStats serves the workshop overview snapshot.
func DashboardStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
