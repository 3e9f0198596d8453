package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"serialtag/internal/models"
	"serialtag/internal/services"

	"github.com/gin-gonic/gin"
)

type stubRecordFinder struct {
	record models.Record
	err    error
	serial string
}

func (s *stubRecordFinder) Find(ctx context.Context, serial string) (models.Record, error) {
	s.serial = serial
	if s.err != nil {
		return models.Record{}, s.err
	}
	return s.record, nil
}

func newScanRouter(t *testing.T, finder RecordFinder) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	controller, err := NewScanController(finder)
	if err != nil {
		t.Fatalf("NewScanController: %v", err)
	}

	router := gin.New()
	if err := controller.RegisterRoutes(router); err != nil {
		t.Fatalf("register scan routes: %v", err)
	}

	return router
}

func TestScanHandlerSuccess(t *testing.T) {
	finder := &stubRecordFinder{record: models.Record{
		Fields:     map[string]string{"DV NUMBER": "A1", "FORM D": "07"},
		SerialCode: "AAAAA-BBBBB-CCCCC",
		IssuedAt:   time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC),
		ScanURL:    "https://plates.example.com/scan/AAAAA-BBBBB-CCCCC",
	}}
	router := newScanRouter(t, finder)

	req := httptest.NewRequest(http.MethodGet, "/scan/AAAAA-BBBBB-CCCCC", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	if finder.serial != "AAAAA-BBBBB-CCCCC" {
		t.Fatalf("serial passed = %q", finder.serial)
	}

	var response ScanResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if response.SerialCode != "AAAAA-BBBBB-CCCCC" {
		t.Fatalf("SerialCode = %q", response.SerialCode)
	}
	if response.Fields["DV NUMBER"] != "A1" {
		t.Fatalf("fields = %v", response.Fields)
	}
	if response.IssuedAt.IsZero() {
		t.Fatalf("IssuedAt is zero")
	}
}

func TestScanHandlerEmptyStore(t *testing.T) {
	router := newScanRouter(t, &stubRecordFinder{err: services.ErrNoBatches})

	req := httptest.NewRequest(http.MethodGet, "/scan/AAAAA-BBBBB-CCCCC", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNotFound)
	}

	var response ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if response.Error != "no batches ingested yet" {
		t.Fatalf("error = %q, want empty-store message", response.Error)
	}
}

func TestScanHandlerUnknownSerial(t *testing.T) {
	router := newScanRouter(t, &stubRecordFinder{err: services.ErrSerialNotFound})

	req := httptest.NewRequest(http.MethodGet, "/scan/00000-00000-00000", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNotFound)
	}

	var response ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if response.Error != "serial code not found" {
		t.Fatalf("error = %q, want miss message", response.Error)
	}
}

func TestScanHandlerInternalError(t *testing.T) {
	router := newScanRouter(t, &stubRecordFinder{err: errors.New("store exploded")})

	req := httptest.NewRequest(http.MethodGet, "/scan/AAAAA-BBBBB-CCCCC", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusInternalServerError)
	}
}
