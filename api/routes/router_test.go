package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/internal/customers"
	"github.com/VadoVates/autoservice/internal/dashboard"
	"github.com/VadoVates/autoservice/internal/invoices"
	"github.com/VadoVates/autoservice/internal/orders"
	"github.com/VadoVates/autoservice/internal/parts"
	"github.com/VadoVates/autoservice/internal/vehicles"
	"github.com/VadoVates/autoservice/internal/workstations"
	"github.com/VadoVates/autoservice/pkg/config"
	"github.com/VadoVates/autoservice/pkg/db"
	"github.com/VadoVates/autoservice/pkg/db/models"
	"github.com/VadoVates/autoservice/pkg/logger"
	"github.com/VadoVates/autoservice/pkg/metrics"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := "file:router_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	for _, name := range []string{"Station 1", "Station 2"} {
		require.NoError(t, conn.Create(&models.WorkStation{Name: name, IsActive: true}).Error)
	}

	client := db.NewFromConn(conn)
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: logger.ParseLevel("error"), Output: io.Discard})

	customersSvc, err := customers.NewService(customers.NewRepository(conn))
	require.NoError(t, err)
	vehiclesSvc, err := vehicles.NewService(vehicles.NewRepository(conn))
	require.NoError(t, err)
	partsSvc, err := parts.NewService(parts.NewRepository(conn))
	require.NoError(t, err)
	stationsSvc, err := workstations.NewService(workstations.NewRepository(conn))
	require.NoError(t, err)
	ordersSvc, err := orders.NewService(orders.NewRepository(conn), client)
	require.NoError(t, err)
	dashboardSvc, err := dashboard.NewService(dashboard.NewRepository(conn), nil, logg)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	cfg := &config.Config{
		App:  config.AppConfig{Env: "dev"},
		HTTP: config.HTTPConfig{CORSOrigins: []string{"http://localhost:3000"}},
	}

	return NewRouter(Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          client,
		Registry:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),

		Customers:    customersSvc,
		Vehicles:     vehiclesSvc,
		Parts:        partsSvc,
		WorkStations: stationsSvc,
		Orders:       ordersSvc,
		Dashboard:    dashboardSvc,
		Invoices:     invoices.NewRenderer(config.InvoiceConfig{SellerName: "AutoService Manager"}),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	payload := map[string]any{}
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func dataField(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	data, ok := payload["data"].(map[string]any)
	require.True(t, ok, "expected data object, got %v", payload)
	return data
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouterOrderLifecycleEndToEnd(t *testing.T) {
	router := newTestRouter(t)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/customers",
		`{"name":"Jan Kowalski","phone":"123456789"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	customerID := int(dataField(t, payload)["id"].(float64))

	rec, payload = doJSON(t, router, http.MethodPost, "/api/vehicles",
		fmt.Sprintf(`{"customer_id":%d,"brand":"Toyota","model":"Corolla","year":2019,"registration_number":"KR12345"}`, customerID))
	require.Equal(t, http.StatusCreated, rec.Code)
	vehicleID := int(dataField(t, payload)["id"].(float64))

	rec, payload = doJSON(t, router, http.MethodPost, "/api/parts",
		`{"code":"BRK-100","name":"Brake pads","price":"45.00","stock_quantity":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	partID := int(dataField(t, payload)["id"].(float64))

	rec, payload = doJSON(t, router, http.MethodPost, "/api/orders",
		fmt.Sprintf(`{"customer_id":%d,"vehicle_id":%d,"description":"front brake service","priority":"high","estimated_cost":"200.00"}`, customerID, vehicleID))
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := int(dataField(t, payload)["id"].(float64))

	rec, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/orders/%d/parts", orderID),
		fmt.Sprintf(`{"part_id":%d,"quantity":2}`, partID))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Invoicing before completion is refused.
	rec, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/orders/%d/invoice", orderID),
		`{"labor_cost":"100.00"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/orders/%d", orderID),
		`{"status":"in_progress","work_station_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/orders/%d", orderID),
		`{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, dataField(t, payload)["completed_at"])

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/orders/%d/invoice", orderID),
		bytes.NewBufferString(`{"labor_cost":"100.00"}`))
	pdfRec := httptest.NewRecorder()
	router.ServeHTTP(pdfRec, req)
	require.Equal(t, http.StatusOK, pdfRec.Code)
	require.Equal(t, "application/pdf", pdfRec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(pdfRec.Body.Bytes(), []byte("%PDF")))

	rec, payload = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/orders/%d/invoice", orderID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, dataField(t, payload)["invoice_number"], "INV-")

	// Stock was reserved by the attach.
	rec, payload = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/parts/%d", partID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(8), dataField(t, payload)["stock_quantity"])

	rec, payload = doJSON(t, router, http.MethodGet, "/api/dashboard/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), dataField(t, payload)["total_orders"])
}

func TestRouterQueueBuckets(t *testing.T) {
	router := newTestRouter(t)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/customers", `{"name":"Anna Nowak"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	customerID := int(dataField(t, payload)["id"].(float64))

	rec, payload = doJSON(t, router, http.MethodPost, "/api/vehicles",
		fmt.Sprintf(`{"customer_id":%d,"brand":"Skoda","model":"Fabia","registration_number":"WA99999"}`, customerID))
	require.Equal(t, http.StatusCreated, rec.Code)
	vehicleID := int(dataField(t, payload)["id"].(float64))

	rec, _ = doJSON(t, router, http.MethodPost, "/api/orders",
		fmt.Sprintf(`{"customer_id":%d,"vehicle_id":%d,"description":"oil change"}`, customerID, vehicleID))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, payload = doJSON(t, router, http.MethodGet, "/api/queue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := dataField(t, payload)
	require.Len(t, data["stations"], 2)
	require.Len(t, data["waiting"], 1)
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/unknown", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
