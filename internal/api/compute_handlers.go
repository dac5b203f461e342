package api

import (
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/apperr"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/cost"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/geo"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/network"
)

// Stateless computation endpoints. Clients call these to preview a cost
// before committing a mutation; nothing here touches stored state.

const kmToMiles = 0.621371

// DistanceRequest is the payload for /api/compute/distance
type DistanceRequest struct {
	From *models.Coordinates `json:"from"`
	To   *models.Coordinates `json:"to"`
}

// DistanceResponse reports a great-circle distance in both units
type DistanceResponse struct {
	DistanceKm    float64 `json:"distanceKm"`
	DistanceMiles float64 `json:"distanceMiles"`
}

// ComputeDistance handles POST /api/compute/distance
func ComputeDistance(c *fiber.Ctx) error {
	var req DistanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}
	if req.From == nil || req.To == nil {
		return apperr.Validationf("invalid coordinates. Required: { from: {lat, lon}, to: {lat, lon} }")
	}
	if !req.From.Valid() || !req.To.Valid() {
		return apperr.Validationf("coordinates out of range: lat must be in [-90,90], lon in [-180,180]")
	}

	distanceKm := geo.Distance(*req.From, *req.To)

	return c.JSON(DistanceResponse{
		DistanceKm:    round2(distanceKm),
		DistanceMiles: round2(distanceKm * kmToMiles),
	})
}

// RouteLengthRequest is the payload for /api/compute/route-length
type RouteLengthRequest struct {
	Waypoints []models.Coordinates `json:"waypoints"`
}

// RouteLengthResponse reports a polyline length
type RouteLengthResponse struct {
	LengthKm  float64 `json:"lengthKm"`
	Waypoints int     `json:"waypoints"`
}

// ComputeRouteLength handles POST /api/compute/route-length
func ComputeRouteLength(c *fiber.Ctx) error {
	var req RouteLengthRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}
	if len(req.Waypoints) < 2 {
		return apperr.Validationf("waypoints must be an array of at least 2 coordinates")
	}
	for i, wp := range req.Waypoints {
		if !wp.Valid() {
			return apperr.Validationf("invalid waypoint at index %d", i)
		}
	}

	return c.JSON(RouteLengthResponse{
		LengthKm:  round2(geo.RouteLength(req.Waypoints)),
		Waypoints: len(req.Waypoints),
	})
}

// StationCostRequest is the payload for /api/compute/station-cost
type StationCostRequest struct {
	Platforms       int                `json:"platforms"`
	StationType     models.StationType `json:"stationType"`
	Facilities      models.Facilities  `json:"facilities"`
	TerrainModifier *float64           `json:"terrainModifier"`
}

// ComputeStationCost handles POST /api/compute/station-cost
func ComputeStationCost(c *fiber.Ctx) error {
	var req StationCostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}
	if req.Platforms == 0 || req.StationType == "" {
		return apperr.Validationf("required: platforms (number), stationType (local|regional|intercity|hub)")
	}
	terrain, err := terrainOrDefault(req.TerrainModifier)
	if err != nil {
		return err
	}

	breakdown, err := cost.StationCost(req.Platforms, req.StationType, req.Facilities, terrain)
	if err != nil {
		return err
	}
	return c.JSON(breakdown)
}

// TrackCostRequest is the payload for /api/compute/track-cost
type TrackCostRequest struct {
	TrackType       models.TrackType     `json:"trackType"`
	Waypoints       []models.Coordinates `json:"waypoints"`
	IsDoubleTrack   bool                 `json:"isDoubleTrack"`
	TerrainModifier *float64             `json:"terrainModifier"`
}

// ComputeTrackCost handles POST /api/compute/track-cost
func ComputeTrackCost(c *fiber.Ctx) error {
	var req TrackCostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}
	if req.TrackType == "" || req.Waypoints == nil {
		return apperr.Validationf("required: trackType (hst|ic|non_electrified), waypoints (array)")
	}
	for i, wp := range req.Waypoints {
		if !wp.Valid() {
			return apperr.Validationf("invalid waypoint at index %d", i)
		}
	}
	terrain, err := terrainOrDefault(req.TerrainModifier)
	if err != nil {
		return err
	}

	breakdown, err := cost.TrackCost(req.TrackType, req.Waypoints, req.IsDoubleTrack, terrain)
	if err != nil {
		return err
	}
	return c.JSON(breakdown)
}

// CrossoverCostRequest is the payload for /api/compute/crossover-cost
type CrossoverCostRequest struct {
	Type            models.CrossoverType `json:"type"`
	TerrainModifier *float64             `json:"terrainModifier"`
}

// CrossoverCostResponse echoes the inputs alongside the cost
type CrossoverCostResponse struct {
	Type            models.CrossoverType `json:"type"`
	Cost            int64                `json:"cost"`
	TerrainModifier float64              `json:"terrainModifier"`
}

// ComputeCrossoverCost handles POST /api/compute/crossover-cost
func ComputeCrossoverCost(c *fiber.Ctx) error {
	var req CrossoverCostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}
	if !cost.ValidCrossoverType(req.Type) {
		return apperr.Validationf("required: type (simple|junction|flying_junction)")
	}
	terrain, err := terrainOrDefault(req.TerrainModifier)
	if err != nil {
		return err
	}

	crossoverCost, err := cost.CrossoverCost(req.Type, terrain)
	if err != nil {
		return err
	}
	return c.JSON(CrossoverCostResponse{
		Type:            req.Type,
		Cost:            crossoverCost,
		TerrainModifier: terrain,
	})
}

// TerrainModifierRequest is the payload for /api/compute/terrain-modifier
type TerrainModifierRequest struct {
	Waypoints []models.Coordinates `json:"waypoints"`
}

// TerrainModifierResponse reports the estimate and its band
type TerrainModifierResponse struct {
	TerrainModifier float64 `json:"terrainModifier"`
	Terrain         string  `json:"terrain"`
}

// ComputeTerrainModifier handles POST /api/compute/terrain-modifier
func ComputeTerrainModifier(c *fiber.Ctx) error {
	var req TerrainModifierRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}
	if len(req.Waypoints) == 0 {
		return apperr.Validationf("waypoints required as array of coordinates")
	}

	modifier := cost.EstimateTerrainModifier(req.Waypoints)

	return c.JSON(TerrainModifierResponse{
		TerrainModifier: modifier,
		Terrain:         cost.TerrainBand(modifier),
	})
}

// NetworkStatsRequest is the payload for /api/compute/network-stats
type NetworkStatsRequest struct {
	Stations   []models.Station   `json:"stations"`
	Tracks     []models.Track     `json:"tracks"`
	Crossovers []models.Crossover `json:"crossovers"`
}

// ComputeNetworkStats handles POST /api/compute/network-stats. It aggregates
// client-supplied collections without touching any stored network.
func ComputeNetworkStats(c *fiber.Ctx) error {
	var req NetworkStatsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}
	if req.Stations == nil || req.Tracks == nil {
		return apperr.Validationf("required: stations (array), tracks (array), crossovers (array, optional)")
	}

	return c.JSON(network.ComputeStats(req.Stations, req.Tracks, req.Crossovers))
}

// terrainOrDefault defaults an absent modifier to 1.0
func terrainOrDefault(modifier *float64) (float64, error) {
	if modifier == nil {
		return 1.0, nil
	}
	if *modifier <= 0 || math.IsNaN(*modifier) {
		return 0, apperr.Validationf("terrainModifier must be a positive number")
	}
	return *modifier, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
