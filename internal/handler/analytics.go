package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/analytics"
)

// getServiceCosts handles GET /analytics/service-costs?vehicle_id=.
func (s *Server) getServiceCosts(w http.ResponseWriter, r *http.Request) {
	s.writeReport(w, r, s.svc.Analytics.ServiceCosts)
}

// getFuelCosts handles GET /analytics/fuel-costs?vehicle_id=.
func (s *Server) getFuelCosts(w http.ResponseWriter, r *http.Request) {
	s.writeReport(w, r, s.svc.Analytics.FuelCosts)
}

func (s *Server) writeReport(w http.ResponseWriter, r *http.Request,
	build func(context.Context, *uuid.UUID) (analytics.Report, error)) {
	vehicleID, err := queryUUID(r, "vehicle_id")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	report, err := build(r.Context(), vehicleID)
	if err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
