package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/service"
)

// LineItemRequest is an ad-hoc line item on a new service visit.
type LineItemRequest struct {
	Name string  `json:"name" validate:"required,max=200"`
	Cost float64 `json:"cost" validate:"min=0"`
}

// ServiceVisitRequest is the body of POST /service-visits.
type ServiceVisitRequest struct {
	Date           openapi_types.Date `json:"date"`
	Mileage        int                `json:"mileage" validate:"min=0"`
	Tax            *float64           `json:"tax" validate:"omitempty,min=0"`
	Discount       *float64           `json:"discount" validate:"omitempty,min=0"`
	Notes          string             `json:"notes" validate:"max=2000"`
	VehicleID      uuid.UUID          `json:"vehicle_id" validate:"required"`
	ProviderID     uuid.UUID          `json:"provider_id" validate:"required"`
	CatalogItemIDs []uuid.UUID        `json:"catalog_item_ids"`
	Items          []LineItemRequest  `json:"items" validate:"dive"`
}

// ServiceVisitResponse is the JSON form of a service visit. Date is a
// calendar date in the server's display time zone.
type ServiceVisitResponse struct {
	ID         uuid.UUID                 `json:"id"`
	Date       openapi_types.Date        `json:"date"`
	Mileage    int                       `json:"mileage"`
	Cost       float64                   `json:"cost"`
	Tax        *float64                  `json:"tax,omitempty"`
	Discount   *float64                  `json:"discount,omitempty"`
	Total      float64                   `json:"total"`
	Notes      string                    `json:"notes,omitempty"`
	VehicleID  *uuid.UUID                `json:"vehicle_id,omitempty"`
	ProviderID *uuid.UUID                `json:"provider_id,omitempty"`
	Items      []domain.SavedServiceItem `json:"items"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// Pagination describes the page returned by a paged list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ServiceVisitPage is the body of GET /service-visits.
type ServiceVisitPage struct {
	Data       []ServiceVisitResponse `json:"data"`
	Pagination Pagination             `json:"pagination"`
}

// listVisits handles GET /service-visits, newest first, optionally
// filtered by ?vehicle_id.
func (s *Server) listVisits(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := queryUUID(r, "vehicle_id")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	page, err := queryInt(r, "page")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	params := domain.NewPaginationParams(page, limit)
	visits, total, err := s.svc.Visits.List(r.Context(), vehicleID, params)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	out := ServiceVisitPage{
		Data: make([]ServiceVisitResponse, len(visits)),
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
			Pages: params.Pages(total),
		},
	}
	for i, v := range visits {
		out.Data[i] = s.visitToResponse(v)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) createVisit(w http.ResponseWriter, r *http.Request) {
	var body ServiceVisitRequest
	if status, msg, ok := decodeBody(r, &body); !ok {
		s.writeRequestError(w, r, status, msg)
		return
	}
	v, err := s.svc.Visits.Create(r.Context(), s.visitFromRequest(body))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusCreated, s.visitToResponse(v))
}

func (s *Server) getVisit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "visitId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	v, err := s.svc.Visits.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "service visit not found")
		return
	}
	writeJSON(w, r, http.StatusOK, s.visitToResponse(v))
}

func (s *Server) deleteVisit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "visitId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	if err := s.svc.Visits.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "service visit not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- mapping helpers --------------------------------------------------------

func (s *Server) visitFromRequest(b ServiceVisitRequest) service.VisitInput {
	in := service.VisitInput{
		Date:           dayIn(b.Date, s.opts.Location),
		Mileage:        b.Mileage,
		Tax:            b.Tax,
		Discount:       b.Discount,
		Notes:          b.Notes,
		VehicleID:      b.VehicleID,
		ProviderID:     b.ProviderID,
		CatalogItemIDs: b.CatalogItemIDs,
	}
	for _, it := range b.Items {
		in.ExtraItems = append(in.ExtraItems, domain.SavedServiceItem{Name: it.Name, Cost: it.Cost})
	}
	return in
}

func (s *Server) visitToResponse(v domain.ServiceVisit) ServiceVisitResponse {
	items := v.Items
	if items == nil {
		items = []domain.SavedServiceItem{}
	}
	return ServiceVisitResponse{
		ID:         v.ID,
		Date:       dateOf(v.Date, s.opts.Location),
		Mileage:    v.Mileage,
		Cost:       v.Cost,
		Tax:        v.Tax,
		Discount:   v.Discount,
		Total:      v.Total,
		Notes:      v.Notes,
		VehicleID:  v.VehicleID,
		ProviderID: v.ProviderID,
		Items:      items,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}
