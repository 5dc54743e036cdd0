package handler

import (
	"net/http"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// ProviderRequest is the body of POST /providers.
type ProviderRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	ContactInfo string `json:"contact_info" validate:"max=500"`
}

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := s.svc.Providers.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, providers)
}

func (s *Server) createProvider(w http.ResponseWriter, r *http.Request) {
	var body ProviderRequest
	if status, msg, ok := decodeBody(r, &body); !ok {
		s.writeRequestError(w, r, status, msg)
		return
	}
	p, err := s.svc.Providers.Create(r.Context(), domain.ServiceProvider{
		Name:        body.Name,
		ContactInfo: body.ContactInfo,
	})
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusCreated, p)
}

// deleteProvider removes the provider. Visits that referenced it keep
// their history with the provider link cleared.
func (s *Server) deleteProvider(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "providerId")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	if err := s.svc.Providers.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "provider not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
