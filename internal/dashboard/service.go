package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VadoVates/autoservice/pkg/db/models"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
	"github.com/VadoVates/autoservice/pkg/logger"
	"github.com/VadoVates/autoservice/pkg/redis"
)

const statsCacheTTL = 30 * time.Second

// StationStatus reports whether a work station currently holds an order.
type StationStatus struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Busy     bool   `json:"busy"`
}

// Stats is the aggregate snapshot served on the dashboard.
type Stats struct {
	TotalCustomers int64            `json:"total_customers"`
	TotalVehicles  int64            `json:"total_vehicles"`
	TotalOrders    int64            `json:"total_orders"`
	ActiveOrders   int64            `json:"active_orders"`
	OrdersInQueue  int64            `json:"orders_in_queue"`
	CompletedToday int64            `json:"completed_today"`
	PriorityStats  map[string]int64 `json:"priority_stats"`
	Stations       []StationStatus  `json:"stations"`
	RevenueToday   decimal.Decimal  `json:"revenue_today"`
	RevenueMonth   decimal.Decimal  `json:"revenue_month"`
	RecentOrders   []models.Order   `json:"recent_orders"`
}

// Service serves the dashboard snapshot, optionally cached in Redis.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo  Repository
	cache *redis.Client
	logg  *logger.Logger
	now   func() time.Time
}

// NewService builds the dashboard service. The cache client may be nil, in
// which case every call hits the database.
func NewService(repo Repository, cache *redis.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:  repo,
		cache: cache,
		logg:  logg,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	s.storeCache(ctx, stats)
	return stats, nil
}

func (s *service) collect(ctx context.Context) (*Stats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &Stats{}
	var err error

	if stats.TotalCustomers, err = s.repo.CountCustomers(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customers")
	}
	if stats.TotalVehicles, err = s.repo.CountVehicles(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vehicles")
	}
	if stats.TotalOrders, err = s.repo.CountOrders(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	if stats.ActiveOrders, err = s.repo.CountActiveOrders(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active orders")
	}
	if stats.OrdersInQueue, err = s.repo.CountQueuedOrders(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count queued orders")
	}
	if stats.CompletedToday, err = s.repo.CountCompletedBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count completed today")
	}
	if stats.PriorityStats, err = s.repo.PriorityStats(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "priority stats")
	}
	if stats.RevenueToday, err = s.repo.RevenueBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revenue today")
	}
	if stats.RevenueMonth, err = s.repo.RevenueBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revenue month")
	}
	if stats.RecentOrders, err = s.repo.RecentOrders(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent orders")
	}

	stations, err := s.repo.ListStations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stations")
	}
	for _, station := range stations {
		busy, err := s.repo.StationBusy(ctx, station.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "station load")
		}
		stats.Stations = append(stats.Stations, StationStatus{
			ID:       station.ID,
			Name:     station.Name,
			IsActive: station.IsActive,
			Busy:     busy,
		})
	}

	return stats, nil
}

// fromCache is best-effort: a broken or absent cache degrades to a DB read.
func (s *service) fromCache(ctx context.Context) *Stats {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cacheKey())
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "dashboard cache read failed")
		}
		return nil
	}
	var stats Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "dashboard cache decode failed")
		return nil
	}
	return &stats
}

func (s *service) storeCache(ctx context.Context, stats *Stats) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(), string(payload), statsCacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "dashboard cache write failed")
	}
}

func (s *service) cacheKey() string {
	return s.cache.CacheKey("dashboard", "stats")
}
