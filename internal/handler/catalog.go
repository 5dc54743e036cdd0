package handler

import (
	"net/http"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// CatalogItemRequest is the body of POST /catalog-items and PUT /catalog-items/{itemId}.
type CatalogItemRequest struct {
	Name string  `json:"name" validate:"required,max=200"`
	Cost float64 `json:"cost" validate:"min=0"`
}

func (s *Server) listCatalogItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Catalog.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) createCatalogItem(w http.ResponseWriter, r *http.Request) {
	var body CatalogItemRequest
	if status, msg, ok := decodeBody(r, &body); !ok {
		s.writeRequestError(w, r, status, msg)
		return
	}
	item, err := s.svc.Catalog.Create(r.Context(), domain.ServiceItem{Name: body.Name, Cost: body.Cost})
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusCreated, item)
}

// updateCatalogItem changes a catalog entry. Line items already saved on
// visits are copies and do not change.
func (s *Server) updateCatalogItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "itemId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	var body CatalogItemRequest
	if status, msg, ok := decodeBody(r, &body); !ok {
		s.writeRequestError(w, r, status, msg)
		return
	}
	item, err := s.svc.Catalog.Update(r.Context(), domain.ServiceItem{ID: id, Name: body.Name, Cost: body.Cost})
	if err != nil {
		s.writeError(w, r, err, "catalog item not found")
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}
