package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/handler"
	"github.com/pkordes/vehicle-logbook/backend/internal/service"
)

const csvHeader = "date,mileage,cost,items,itemsCost,provider,contactInfo,vehicle,year,vin,license,imageFilename"

func exportRowFixture() domain.ExportRow {
	return domain.ExportRow{
		Date:          time.Date(2024, 6, 1, 0, 0, 0, 0, pacific),
		Mileage:       32000,
		Cost:          89.99,
		ItemNames:     []string{"Oil Change", "Tire Rotation"},
		ItemCosts:     []float64{49.99, 40},
		Provider:      "AutoFix",
		ContactInfo:   "555-1234",
		Vehicle:       "Civic",
		ModelYear:     2020,
		VIN:           "1HGBH41",
		License:       "ABC123",
		ImageFilename: "Vehicle_482910.jpg",
	}
}

func exportHandler(m *mockExportServicer, exportDir string) http.Handler {
	return newHTTPHandler(handler.Services{Export: m}, handler.Options{Location: pacific, ExportDir: exportDir})
}

// ---- GET /export -----------------------------------------------------------

func TestGetExport_StreamsCSVWithManifestHeaders(t *testing.T) {
	svc := &mockExportServicer{
		export: func(_ context.Context) ([]domain.ExportRow, domain.ExportManifest, error) {
			return []domain.ExportRow{exportRowFixture()}, domain.ExportManifest{
				Written: 1,
				Skipped: 2,
			}, nil
		},
	}

	rec := do(exportHandler(svc, ""), http.MethodGet, "/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=ServiceRecords.csv`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", rec.Header().Get(handler.HeaderExportWritten))
	assert.Equal(t, "2", rec.Header().Get(handler.HeaderExportSkipped))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, csvHeader, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-06-01,32000,89.99,"), lines[1])
}

func TestGetExport_JSONFormat(t *testing.T) {
	svc := &mockExportServicer{
		export: func(_ context.Context) ([]domain.ExportRow, domain.ExportManifest, error) {
			return []domain.ExportRow{exportRowFixture()}, domain.ExportManifest{
				Written:        1,
				SkippedReasons: []domain.SkipReason{},
			}, nil
		},
	}

	rec := do(exportHandler(svc, ""), http.MethodGet, "/export?format=json", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ExportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "2024-06-01", resp.Rows[0].Date.String())
	assert.Equal(t, []string{"Oil Change", "Tire Rotation"}, resp.Rows[0].ItemNames)
	assert.Equal(t, 1, resp.Manifest.Written)
}

func TestGetExport_UnknownFormatReturns400(t *testing.T) {
	rec := do(exportHandler(&mockExportServicer{}, ""), http.MethodGet, "/export?format=xml", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetExport_ServiceErrorReturns500(t *testing.T) {
	svc := &mockExportServicer{
		export: func(_ context.Context) ([]domain.ExportRow, domain.ExportManifest, error) {
			return nil, domain.ExportManifest{}, errors.New("boom")
		},
	}

	rec := do(exportHandler(svc, ""), http.MethodGet, "/export", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get(handler.HeaderExportWritten))
}

// ---- POST /export/files ----------------------------------------------------

func TestPostExportFiles_UsesConfiguredDir(t *testing.T) {
	svc := &mockExportServicer{
		exportToDir: func(_ context.Context, dir string) (domain.ExportManifest, error) {
			assert.Equal(t, "/data/export", dir)
			return domain.ExportManifest{Written: 3, Images: 1, Path: dir + "/ServiceRecords.csv"}, nil
		},
	}

	rec := do(exportHandler(svc, "/data/export"), http.MethodPost, "/export/files", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var m domain.ExportManifest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, 3, m.Written)
	assert.Equal(t, 1, m.Images)
}

func TestPostExportFiles_NoDirReturns503(t *testing.T) {
	rec := do(exportHandler(&mockExportServicer{}, ""), http.MethodPost, "/export/files", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "export_disabled", decodeError(t, rec).Code)
}

// ---- POST /import ----------------------------------------------------------

func importHandler(m *mockImportServicer) http.Handler {
	return newHTTPHandler(handler.Services{Import: m}, handler.Options{})
}

func postCSV(h http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostImport_RawBody(t *testing.T) {
	payload := csvHeader + "\n2024-06-01,32000,49.99,Oil Change,49.99,AutoFix,555-1234,Civic,2020,1HGBH41,ABC123,\n"
	svc := &mockImportServicer{
		importFn: func(_ context.Context, src io.Reader, req service.ImportRequest) (domain.ImportResult, error) {
			b, err := io.ReadAll(src)
			require.NoError(t, err)
			assert.Equal(t, payload, string(b))
			assert.Equal(t, domain.ParseMode(""), req.Mode)
			assert.False(t, req.Replace)
			return domain.ImportResult{Rows: 1, Imported: 1, SkippedReasons: []domain.SkipReason{}}, nil
		},
	}

	rec := postCSV(importHandler(svc), "/import", payload)

	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 1, res.Imported)
}

func TestPostImport_StrictMode(t *testing.T) {
	svc := &mockImportServicer{
		importFn: func(_ context.Context, _ io.Reader, req service.ImportRequest) (domain.ImportResult, error) {
			assert.Equal(t, domain.ParseStrict, req.Mode)
			return domain.ImportResult{}, nil
		},
	}

	rec := postCSV(importHandler(svc), "/import?mode=strict", csvHeader+"\n")

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPostImport_UnknownModeReturns422(t *testing.T) {
	rec := postCSV(importHandler(&mockImportServicer{}), "/import?mode=yolo", csvHeader+"\n")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, `unknown import mode "yolo"`, decodeError(t, rec).Message)
}

func TestPostImport_ReplaceWithoutConfirmReturns409(t *testing.T) {
	rec := postCSV(importHandler(&mockImportServicer{}), "/import?replace=true", csvHeader+"\n")

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "confirmation_required", decodeError(t, rec).Code)
}

func TestPostImport_ReplaceWithConfirm(t *testing.T) {
	svc := &mockImportServicer{
		importFn: func(_ context.Context, _ io.Reader, req service.ImportRequest) (domain.ImportResult, error) {
			assert.True(t, req.Replace)
			return domain.ImportResult{Replaced: true}, nil
		},
	}

	rec := postCSV(importHandler(svc), "/import?replace=true&confirm=replace", csvHeader+"\n")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"replaced":true`)
}

func TestPostImport_MultipartFile(t *testing.T) {
	payload := csvHeader + "\n"
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "ServiceRecords.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	svc := &mockImportServicer{
		importFn: func(_ context.Context, src io.Reader, _ service.ImportRequest) (domain.ImportResult, error) {
			b, err := io.ReadAll(src)
			require.NoError(t, err)
			assert.Equal(t, payload, string(b))
			return domain.ImportResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	importHandler(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPostImport_MultipartWithoutFileReturns400(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	importHandler(&mockImportServicer{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterchangeLimit_WrapsImportAndExportFiles(t *testing.T) {
	var wrapped []string
	limit := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped = append(wrapped, r.URL.Path)
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	h := newHTTPHandler(handler.Services{
		Export: &mockExportServicer{
			export: func(_ context.Context) ([]domain.ExportRow, domain.ExportManifest, error) {
				return nil, domain.ExportManifest{}, nil
			},
		},
		Import: &mockImportServicer{},
	}, handler.Options{ExportDir: "/tmp/x", InterchangeLimit: limit})

	assert.Equal(t, http.StatusTooManyRequests, postCSV(h, "/import", csvHeader+"\n").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/export/files", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/export", nil).Code)
	assert.Equal(t, []string{"/import", "/export/files"}, wrapped)
}
