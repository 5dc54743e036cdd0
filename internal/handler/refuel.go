package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/fueleconomy"
)

// RefuelStationRequest is the body of POST /refuel-stations.
type RefuelStationRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"max=500"`
}

// RefuelVisitRequest is the body of POST /refuel-visits.
type RefuelVisitRequest struct {
	Date          openapi_types.Date `json:"date"`
	Odometer      int                `json:"odometer" validate:"min=0"`
	Gallons       float64            `json:"gallons" validate:"gt=0"`
	CostPerGallon float64            `json:"cost_per_gallon" validate:"min=0"`
	CarWashCost   *float64           `json:"car_wash_cost" validate:"omitempty,min=0"`
	VehicleID     uuid.UUID          `json:"vehicle_id" validate:"required"`
	StationID     *uuid.UUID         `json:"station_id"`
}

// RefuelVisitResponse is the JSON form of a refuel visit.
type RefuelVisitResponse struct {
	ID            uuid.UUID          `json:"id"`
	Date          openapi_types.Date `json:"date"`
	Odometer      int                `json:"odometer"`
	Gallons       float64            `json:"gallons"`
	CostPerGallon float64            `json:"cost_per_gallon"`
	CarWashCost   *float64           `json:"car_wash_cost,omitempty"`
	Total         float64            `json:"total"`
	VehicleID     *uuid.UUID         `json:"vehicle_id,omitempty"`
	StationID     *uuid.UUID         `json:"station_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// FuelEconomyEntry is one fill-up with the distance and MPG since the previous one.
type FuelEconomyEntry struct {
	Visit    RefuelVisitResponse `json:"visit"`
	Distance *int                `json:"distance,omitempty"`
	MPG      *float64            `json:"mpg,omitempty"`
}

// FuelEconomyResponse is the body of GET /vehicles/{vehicleId}/fuel-economy.
type FuelEconomyResponse struct {
	VehicleID    uuid.UUID          `json:"vehicle_id"`
	Entries      []FuelEconomyEntry `json:"entries"`
	AverageMPG   *float64           `json:"average_mpg,omitempty"`
	TotalGallons float64            `json:"total_gallons"`
	TotalCost    float64            `json:"total_cost"`
	CostPerMile  *float64           `json:"cost_per_mile,omitempty"`
}

func (s *Server) listStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.svc.Refuels.ListStations(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, stations)
}

func (s *Server) createStation(w http.ResponseWriter, r *http.Request) {
	var body RefuelStationRequest
	if status, msg, ok := decodeBody(r, &body); !ok {
		s.writeRequestError(w, r, status, msg)
		return
	}
	st, err := s.svc.Refuels.CreateStation(r.Context(), domain.RefuelStation{Name: body.Name, Location: body.Location})
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusCreated, st)
}

func (s *Server) deleteStation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "stationId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	if err := s.svc.Refuels.DeleteStation(r.Context(), id); err != nil {
		s.writeError(w, r, err, "refuel station not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listRefuelVisits(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := queryUUID(r, "vehicle_id")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	visits, err := s.svc.Refuels.ListVisits(r.Context(), vehicleID)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	out := make([]RefuelVisitResponse, len(visits))
	for i, v := range visits {
		out[i] = s.refuelToResponse(v)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) createRefuelVisit(w http.ResponseWriter, r *http.Request) {
	var body RefuelVisitRequest
	if status, msg, ok := decodeBody(r, &body); !ok {
		s.writeRequestError(w, r, status, msg)
		return
	}
	vehicleID := body.VehicleID
	v, err := s.svc.Refuels.CreateVisit(r.Context(), domain.RefuelVisit{
		Date:          dayIn(body.Date, s.opts.Location),
		Odometer:      body.Odometer,
		Gallons:       body.Gallons,
		CostPerGallon: body.CostPerGallon,
		CarWashCost:   body.CarWashCost,
		VehicleID:     &vehicleID,
		StationID:     body.StationID,
	})
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusCreated, s.refuelToResponse(v))
}

// getFuelEconomy handles GET /vehicles/{vehicleId}/fuel-economy.
func (s *Server) getFuelEconomy(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "vehicleId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	report, err := s.svc.Refuels.FuelEconomy(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	writeJSON(w, r, http.StatusOK, s.fuelEconomyToResponse(report))
}

// ---- mapping helpers --------------------------------------------------------

func (s *Server) refuelToResponse(v domain.RefuelVisit) RefuelVisitResponse {
	return RefuelVisitResponse{
		ID:            v.ID,
		Date:          dateOf(v.Date, s.opts.Location),
		Odometer:      v.Odometer,
		Gallons:       v.Gallons,
		CostPerGallon: v.CostPerGallon,
		CarWashCost:   v.CarWashCost,
		Total:         v.Total,
		VehicleID:     v.VehicleID,
		StationID:     v.StationID,
		CreatedAt:     v.CreatedAt,
	}
}

func (s *Server) fuelEconomyToResponse(rep fueleconomy.Report) FuelEconomyResponse {
	out := FuelEconomyResponse{
		VehicleID:    rep.VehicleID,
		Entries:      make([]FuelEconomyEntry, len(rep.Entries)),
		AverageMPG:   rep.AverageMPG,
		TotalGallons: rep.TotalGallons,
		TotalCost:    rep.TotalCost,
		CostPerMile:  rep.CostPerMile,
	}
	for i, e := range rep.Entries {
		out.Entries[i] = FuelEconomyEntry{
			Visit:    s.refuelToResponse(e.Visit),
			Distance: e.Distance,
			MPG:      e.MPG,
		}
	}
	return out
}
