package handler

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/vehicle-logbook/backend/internal/csvcodec"
	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/service"
)

// Response headers carrying the manifest counts of a CSV download.
const (
	HeaderExportWritten = "X-Export-Written"
	HeaderExportSkipped = "X-Export-Skipped"
)

// replaceConfirmation must be passed as ?confirm= alongside ?replace=true.
const replaceConfirmation = "replace"

// ExportRowResponse is the JSON form of one interchange row.
type ExportRowResponse struct {
	Date          openapi_types.Date `json:"date"`
	Mileage       int                `json:"mileage"`
	Cost          float64            `json:"cost"`
	ItemNames     []string           `json:"item_names"`
	ItemCosts     []float64          `json:"item_costs"`
	Provider      string             `json:"provider"`
	ContactInfo   string             `json:"contact_info"`
	Vehicle       string             `json:"vehicle"`
	ModelYear     int                `json:"model_year"`
	VIN           string             `json:"vin"`
	License       string             `json:"license"`
	ImageFilename string             `json:"image_filename,omitempty"`
}

// ExportResponse is the body of GET /export?format=json.
type ExportResponse struct {
	Rows     []ExportRowResponse   `json:"rows"`
	Manifest domain.ExportManifest `json:"manifest"`
}

// getExport handles GET /export. The default format is the interchange CSV,
// streamed as an attachment; format=json returns the same rows with the
// manifest. Vehicle photos are not included in either form.
func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	format, err := queryString(r, "format")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	if format != "" && format != "csv" && format != "json" {
		writeBadRequest(w, r, "format must be csv or json")
		return
	}

	rows, manifest, err := s.svc.Export.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	if format == "json" {
		out := ExportResponse{Rows: make([]ExportRowResponse, len(rows)), Manifest: manifest}
		for i, row := range rows {
			out.Rows[i] = s.exportRowToResponse(row)
		}
		writeJSON(w, r, http.StatusOK, out)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": service.ExportFilename}))
	w.Header().Set(HeaderExportWritten, strconv.Itoa(manifest.Written))
	w.Header().Set(HeaderExportSkipped, strconv.Itoa(manifest.Skipped))
	w.WriteHeader(http.StatusOK)
	if err := csvcodec.Encode(w, rows, s.opts.Location); err != nil {
		// Headers are already sent; the client sees a truncated body.
		s.opts.Logger.ErrorContext(r.Context(), "export stream failed", "error", err)
	}
}

// postExportFiles handles POST /export/files. It writes the CSV and the
// ExportedImages folder under the configured export directory and returns
// the manifest.
func (s *Server) postExportFiles(w http.ResponseWriter, r *http.Request) {
	if s.opts.ExportDir == "" {
		writeJSON(w, r, http.StatusServiceUnavailable,
			ErrorResponse{Error: ErrorDetail{Code: "export_disabled", Message: "no export directory configured"}})
		return
	}
	manifest, err := s.svc.Export.ExportToDir(r.Context(), s.opts.ExportDir)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, manifest)
}

// postImport handles POST /import. The body is the interchange CSV, either
// raw or as the "file" part of a multipart form.
//
// Query parameters:
//   - mode: lenient (default) or strict
//   - replace=true with confirm=replace: purge every record first
func (s *Server) postImport(w http.ResponseWriter, r *http.Request) {
	modeParam, err := queryString(r, "mode")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	replace, err := queryBool(r, "replace")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	confirm, err := queryString(r, "confirm")
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	req := service.ImportRequest{Replace: replace}
	if modeParam != "" {
		mode, err := domain.ParseParseMode(modeParam)
		if err != nil {
			s.writeError(w, r, err, "")
			return
		}
		req.Mode = mode
	}
	if replace && confirm != replaceConfirmation {
		writeJSON(w, r, http.StatusConflict, ErrorResponse{Error: ErrorDetail{
			Code:    "confirmation_required",
			Message: "replace deletes every stored record; repeat with confirm=replace",
		}})
		return
	}

	src, closeSrc, err := importSource(r)
	if err != nil {
		s.writeRequestError(w, r, readErrorStatus(err), err.Error())
		return
	}
	defer closeSrc()

	result, err := s.svc.Import.Import(r.Context(), src, req)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// importSource returns the uploaded CSV from a raw or multipart body.
func importSource(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func (s *Server) exportRowToResponse(row domain.ExportRow) ExportRowResponse {
	return ExportRowResponse{
		Date:          dateOf(row.Date, s.opts.Location),
		Mileage:       row.Mileage,
		Cost:          row.Cost,
		ItemNames:     row.ItemNames,
		ItemCosts:     row.ItemCosts,
		Provider:      row.Provider,
		ContactInfo:   row.ContactInfo,
		Vehicle:       row.Vehicle,
		ModelYear:     row.ModelYear,
		VIN:           row.VIN,
		License:       row.License,
		ImageFilename: row.ImageFilename,
	}
}
