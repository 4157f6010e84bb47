package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
)

type locationService interface {
	GetLatest(ctx context.Context, vehicleID string) (*domain.Location, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.Location, error)
	GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error)
	GetTrips(ctx context.Context, vehicleID string, start, end time.Time) ([]domain.Trip, error)
}

type segmentService interface {
	Segment(ctx context.Context, vehicleID string, windowStart, windowEnd time.Time) error
}

type locationResponse struct {
	VehicleID string  `json:"vehicle_id"`
	TrackerID string  `json:"tracker_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp int64   `json:"timestamp"`
}

type VehicleHandler struct {
	locationSvc locationService
	segmentSvc  segmentService
}

func NewVehicleHandler(locationSvc locationService, segmentSvc segmentService) *VehicleHandler {
	return &VehicleHandler{locationSvc: locationSvc, segmentSvc: segmentSvc}
}

func (h *VehicleHandler) Register(r *gin.RouterGroup) {
	r.GET("/vehicles", h.GetAllVehicles)
	r.GET("/vehicles/:vehicle_id/location", h.GetLatestLocation)
	r.GET("/vehicles/:vehicle_id/history", h.GetHistory)
	r.GET("/vehicles/:vehicle_id/trips", h.GetTrips)
	r.POST("/vehicles/:vehicle_id/recompute", h.Recompute)
}

func (h *VehicleHandler) GetAllVehicles(c *gin.Context) {
	vehicles, err := h.locationSvc.GetAllVehicles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch vehicles"})
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

func (h *VehicleHandler) GetLatestLocation(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")

	loc, err := h.locationSvc.GetLatest(c.Request.Context(), vehicleID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, toLocationResponse(loc))
}

func (h *VehicleHandler) GetHistory(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")

	start, end, ok := parseWindow(c)
	if !ok {
		return
	}

	query := &domain.HistoryQuery{
		VehicleID: vehicleID,
		Start:     start,
		End:       end,
	}

	locations, err := h.locationSvc.GetHistory(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	results := make([]locationResponse, len(locations))
	for i := range locations {
		results[i] = toLocationResponse(&locations[i])
	}
	c.JSON(http.StatusOK, results)
}

func (h *VehicleHandler) GetTrips(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")

	start, end, ok := parseWindow(c)
	if !ok {
		return
	}

	trips, err := h.locationSvc.GetTrips(c.Request.Context(), vehicleID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch trips"})
		return
	}

	c.JSON(http.StatusOK, trips)
}

// Recompute re-segments the requested window synchronously. Segmentation
// is idempotent, so repeated calls are harmless.
func (h *VehicleHandler) Recompute(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")

	start, end, ok := parseWindow(c)
	if !ok {
		return
	}

	if err := h.segmentSvc.Segment(c.Request.Context(), vehicleID, start, end); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recompute failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return time.Time{}, time.Time{}, false
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return time.Time{}, time.Time{}, false
	}

	return time.Unix(start, 0), time.Unix(end, 0), true
}

func toLocationResponse(loc *domain.Location) locationResponse {
	return locationResponse{
		VehicleID: loc.VehicleID,
		TrackerID: loc.TrackerID,
		Latitude:  loc.Lat,
		Longitude: loc.Lon,
		Speed:     loc.Speed,
		Heading:   loc.Heading,
		Timestamp: loc.RecordedAt.Unix(),
	}
}
