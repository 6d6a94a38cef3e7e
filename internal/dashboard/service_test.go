package dashboard

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	"github.com/VadoVates/autoservice/pkg/logger"
)

func setupDashboardTest(t *testing.T) (*gorm.DB, *service) {
	t.Helper()

	dsn := "file:dashboard_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
	svc := &service{
		repo: NewRepository(conn),
		logg: logg,
		now:  func() time.Time { return time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC) },
	}
	return conn, svc
}

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestDashboardStats(t *testing.T) {
	conn, svc := setupDashboardTest(t)
	ctx := context.Background()

	for _, name := range []string{"Station 1", "Station 2"} {
		require.NoError(t, conn.Create(&models.WorkStation{Name: name, IsActive: true}).Error)
	}

	customer := &models.Customer{Name: "Jan Kowalski"}
	require.NoError(t, conn.Create(customer).Error)
	vehicle := &models.Vehicle{CustomerID: customer.ID, Brand: "Toyota", Model: "Corolla", RegistrationNumber: "KR11111"}
	require.NoError(t, conn.Create(vehicle).Error)

	stationOne := uint(1)
	today := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	earlierThisMonth := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	orders := []models.Order{
		{CustomerID: customer.ID, VehicleID: vehicle.ID, Description: "queued", Priority: "urgent", Status: "new"},
		{CustomerID: customer.ID, VehicleID: vehicle.ID, WorkStationID: &stationOne, Description: "busy station", Priority: "normal", Status: "in_progress"},
		{CustomerID: customer.ID, VehicleID: vehicle.ID, Description: "billed today", Priority: "normal", Status: "invoiced",
			CompletedAt: timePtr(today), FinalCost: decimalPtr("150.00")},
		{CustomerID: customer.ID, VehicleID: vehicle.ID, Description: "billed earlier", Priority: "high", Status: "invoiced",
			CompletedAt: timePtr(earlierThisMonth), FinalCost: decimalPtr("200.00")},
	}
	for i := range orders {
		require.NoError(t, conn.Create(&orders[i]).Error)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	require.Equal(t, int64(1), stats.TotalCustomers)
	require.Equal(t, int64(1), stats.TotalVehicles)
	require.Equal(t, int64(4), stats.TotalOrders)
	require.Equal(t, int64(2), stats.ActiveOrders)
	require.Equal(t, int64(1), stats.OrdersInQueue)
	require.Equal(t, int64(1), stats.CompletedToday)

	require.Equal(t, int64(1), stats.PriorityStats["urgent"])
	require.Equal(t, int64(1), stats.PriorityStats["normal"])
	require.Zero(t, stats.PriorityStats["high"])

	require.Len(t, stats.Stations, 2)
	require.True(t, stats.Stations[0].Busy)
	require.False(t, stats.Stations[1].Busy)

	require.True(t, stats.RevenueToday.Equal(decimal.RequireFromString("150.00")))
	require.True(t, stats.RevenueMonth.Equal(decimal.RequireFromString("350.00")))

	require.Len(t, stats.RecentOrders, 4)
	require.NotNil(t, stats.RecentOrders[0].Customer)
	require.NotNil(t, stats.RecentOrders[0].Vehicle)
}

func TestDashboardStatsEmptyDatabase(t *testing.T) {
	_, svc := setupDashboardTest(t)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.TotalOrders)
	require.Empty(t, stats.Stations)
	require.True(t, stats.RevenueToday.IsZero())
	require.Empty(t, stats.RecentOrders)
}
