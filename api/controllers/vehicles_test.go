package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/VadoVates/autoservice/internal/vehicles"
	"github.com/VadoVates/autoservice/pkg/db/models"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
	"github.com/VadoVates/autoservice/pkg/pagination"
)

type stubVehicleService struct {
	vehicle   *models.Vehicle
	err       error
	lastInput vehicles.Input
}

func (s *stubVehicleService) Create(_ context.Context, input vehicles.Input) (*models.Vehicle, error) {
	s.lastInput = input
	return s.vehicle, s.err
}

func (s *stubVehicleService) Get(context.Context, uint) (*models.Vehicle, error) {
	return s.vehicle, s.err
}

func (s *stubVehicleService) List(context.Context, pagination.Params) ([]models.Vehicle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Vehicle{*s.vehicle}, nil
}

func (s *stubVehicleService) Update(_ context.Context, _ uint, input vehicles.Input) (*models.Vehicle, error) {
	s.lastInput = input
	return s.vehicle, s.err
}

func (s *stubVehicleService) Delete(context.Context, uint) error {
	return s.err
}

func TestVehicleCreateSuccess(t *testing.T) {
	svc := &stubVehicleService{vehicle: &models.Vehicle{ID: 3, CustomerID: 1, Brand: "Toyota", Model: "Corolla", RegistrationNumber: "KR 12345"}}
	handler := VehicleCreate(svc, nil)

	body := bytes.NewBufferString(`{"customer_id":1,"brand":"Toyota","model":"Corolla","year":2019,"registration_number":"KR 12345"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastInput.Year == nil || *svc.lastInput.Year != 2019 {
		t.Fatalf("expected year to reach the service, got %v", svc.lastInput.Year)
	}

	var envelope struct {
		Data models.Vehicle `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RegistrationNumber != "KR 12345" {
		t.Fatalf("expected registration in response, got %q", envelope.Data.RegistrationNumber)
	}
}

func TestVehicleCreateRejectsAncientYear(t *testing.T) {
	handler := VehicleCreate(&stubVehicleService{}, nil)

	body := bytes.NewBufferString(`{"customer_id":1,"brand":"Ford","model":"T","year":1850,"registration_number":"KR 1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestVehicleCreateRejectsLongVIN(t *testing.T) {
	handler := VehicleCreate(&stubVehicleService{}, nil)

	body := bytes.NewBufferString(`{"customer_id":1,"brand":"Ford","model":"Focus","registration_number":"KR 2","vin":"THIS-VIN-IS-WAY-TOO-LONG-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestVehicleUpdateDuplicateRegistration(t *testing.T) {
	svc := &stubVehicleService{err: pkgerrors.New(pkgerrors.CodeConflict, "vehicle with this registration number already exists")}
	handler := VehicleUpdate(svc, nil)

	body := bytes.NewBufferString(`{"customer_id":1,"brand":"Ford","model":"Focus","registration_number":"KR 12345"}`)
	req := withIDParam(httptest.NewRequest(http.MethodPut, "/api/vehicles/3", body), "id", "3")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVehicleDeleteWithHistoryConflict(t *testing.T) {
	svc := &stubVehicleService{err: pkgerrors.New(pkgerrors.CodeConflict, "cannot delete vehicle with existing orders")}
	handler := VehicleDelete(svc, nil)

	req := withIDParam(httptest.NewRequest(http.MethodDelete, "/api/vehicles/3", nil), "id", "3")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}
