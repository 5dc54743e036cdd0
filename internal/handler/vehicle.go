package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// VehicleRequest is the body of POST /vehicles and PUT /vehicles/{vehicleId}.
type VehicleRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	ModelYear      int    `json:"model_year" validate:"min=0,max=9999"`
	VIN            string `json:"vin" validate:"max=64"`
	License        string `json:"license" validate:"max=32"`
	CurrentMileage int    `json:"current_mileage" validate:"min=0"`
}

// VehicleResponse is the JSON form of a vehicle.
type VehicleResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ModelYear      int       `json:"model_year"`
	VIN            string    `json:"vin"`
	License        string    `json:"license"`
	CurrentMileage int       `json:"current_mileage"`
	HasPhoto       bool      `json:"has_photo"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s *Server) listVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.svc.Vehicles.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	out := make([]VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		out[i] = vehicleToResponse(v)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) createVehicle(w http.ResponseWriter, r *http.Request) {
	var body VehicleRequest
	if status, msg, ok := decodeBody(r, &body); !ok {
		s.writeRequestError(w, r, status, msg)
		return
	}
	v, err := s.svc.Vehicles.Create(r.Context(), vehicleFromRequest(body))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusCreated, vehicleToResponse(v))
}

func (s *Server) getVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "vehicleId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	v, err := s.svc.Vehicles.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	writeJSON(w, r, http.StatusOK, vehicleToResponse(v))
}

func (s *Server) updateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "vehicleId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	var body VehicleRequest
	if status, msg, ok := decodeBody(r, &body); !ok {
		s.writeRequestError(w, r, status, msg)
		return
	}
	in := vehicleFromRequest(body)
	in.ID = id
	v, err := s.svc.Vehicles.Update(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	writeJSON(w, r, http.StatusOK, vehicleToResponse(v))
}

func (s *Server) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "vehicleId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	if err := s.svc.Vehicles.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getVehiclePhoto streams the stored photo bytes. A vehicle without a
// photo is reported as 404.
func (s *Server) getVehiclePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "vehicleId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	v, err := s.svc.Vehicles.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	if !v.HasPhoto() {
		writeJSON(w, r, http.StatusNotFound, notFoundBody("vehicle has no photo"))
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(v.Photo))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(v.Photo)
}

// putVehiclePhoto replaces the photo with the raw request body.
// An empty body clears it.
func (s *Server) putVehiclePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "vehicleId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeRequestError(w, r, readErrorStatus(err), "could not read request body")
		return
	}
	v, err := s.svc.Vehicles.SetPhoto(r.Context(), id, data)
	if err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	writeJSON(w, r, http.StatusOK, vehicleToResponse(v))
}

// ---- mapping helpers --------------------------------------------------------

func vehicleFromRequest(b VehicleRequest) domain.Vehicle {
	return domain.Vehicle{
		Name:           b.Name,
		ModelYear:      b.ModelYear,
		VIN:            b.VIN,
		License:        b.License,
		CurrentMileage: b.CurrentMileage,
	}
}

func vehicleToResponse(v domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:             v.ID,
		Name:           v.Name,
		ModelYear:      v.ModelYear,
		VIN:            v.VIN,
		License:        v.License,
		CurrentMileage: v.CurrentMileage,
		HasPhoto:       v.HasPhoto(),
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}
