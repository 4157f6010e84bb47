package service

import (
	"context"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/database"
)

type LocationService struct {
	locations database.LocationRepository
	trips     database.TripRepository
}

func NewLocationService(locations database.LocationRepository, trips database.TripRepository) *LocationService {
	return &LocationService{locations: locations, trips: trips}
}

func (s *LocationService) SaveLocation(ctx context.Context, loc *domain.Location) error {
	return s.locations.Insert(ctx, loc)
}

func (s *LocationService) GetLatest(ctx context.Context, vehicleID string) (*domain.Location, error) {
	return s.locations.GetLatest(ctx, vehicleID)
}

func (s *LocationService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.Location, error) {
	return s.locations.GetHistory(ctx, query)
}

func (s *LocationService) GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return s.locations.GetAllVehicles(ctx)
}

func (s *LocationService) GetTrips(ctx context.Context, vehicleID string, start, end time.Time) ([]domain.Trip, error) {
	return s.trips.GetByVehicle(ctx, vehicleID, start, end)
}
