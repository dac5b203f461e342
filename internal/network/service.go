package network

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/apperr"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/cache"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/cost"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/store"
)

// StartingBudget is granted to every new network
const StartingBudget int64 = 1_000_000_000

const (
	startYear  = 2024
	startMonth = 1
)

// Refund ratios applied when demolishing built entities
const (
	stationRefundRatio   = 0.5
	trackRefundRatio     = 0.3
	crossoverRefundRatio = 0.4
)

// Regions a network can be initialized against
var knownRegions = map[string]bool{
	"netherlands": true,
	"belgium":     true,
	"benelux":     true,
}

// ValidRegion reports whether regionID names a playable region
func ValidRegion(regionID string) bool {
	return knownRegions[regionID]
}

// Service owns all reads and mutations of network documents. Every mutation
// is load-validate-mutate-persist under a per-id lock; a failed validation
// or budget check leaves the stored document untouched.
type Service struct {
	repo  store.Repository
	cache cache.NetworkCache
	locks *idLocks
}

// NewService creates a Service. cache may be nil to disable caching.
func NewService(repo store.Repository, networkCache cache.NetworkCache) *Service {
	return &Service{
		repo:  repo,
		cache: networkCache,
		locks: newIDLocks(),
	}
}

// Create allocates and persists a new empty network
func (s *Service) Create(ctx context.Context, name, regionID string) (*models.Network, error) {
	if name == "" {
		name = "My Railway Network"
	}
	if !ValidRegion(regionID) {
		return nil, apperr.Validationf("unknown region: %q (expected netherlands, belgium or benelux)", regionID)
	}

	network := &models.Network{
		SchemaVersion: models.SchemaVersion,
		ID:            uuid.NewString(),
		Name:          name,
		Budget:        StartingBudget,
		GameYear:      startYear,
		GameMonth:     startMonth,
		Stations:      []models.Station{},
		Tracks:        []models.Track{},
		Crossovers:    []models.Crossover{},
	}

	if err := s.persist(ctx, network); err != nil {
		return nil, err
	}

	log.Info().Str("network_id", network.ID).Str("region", regionID).Msg("network created")
	return network, nil
}

// Get loads a network, consulting the cache first. Cache misses load and
// fill under the per-id lock so a slow reader cannot overwrite a fresher
// entry written by a concurrent mutation.
func (s *Service) Get(ctx context.Context, id string) (*models.Network, error) {
	if s.cache != nil {
		if network, ok := s.cache.Get(ctx, id); ok {
			return network, nil
		}
	}

	mu := s.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	if s.cache != nil {
		if network, ok := s.cache.Get(ctx, id); ok {
			return network, nil
		}
	}

	network, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, network)
	}
	return network, nil
}

// AddStationRequest is the payload for station construction
type AddStationRequest struct {
	Name            string             `json:"name"`
	Location        models.Coordinates `json:"location"`
	Platforms       int                `json:"platforms"`
	StationType     models.StationType `json:"stationType"`
	Facilities      models.Facilities  `json:"facilities"`
	TerrainModifier *float64           `json:"terrainModifier"`
}

// AddStation validates, prices and builds a station, debiting the budget by
// the server-computed cost. Any client-supplied cost is ignored.
func (s *Service) AddStation(ctx context.Context, networkID string, req AddStationRequest) (*models.Station, int64, error) {
	if req.Name == "" {
		return nil, 0, apperr.Validationf("station name is required")
	}
	if !req.Location.Valid() {
		return nil, 0, apperr.Validationf("invalid station location: lat must be in [-90,90], lon in [-180,180]")
	}
	terrain, err := normalizeTerrain(req.TerrainModifier)
	if err != nil {
		return nil, 0, err
	}

	breakdown, err := cost.StationCost(req.Platforms, req.StationType, req.Facilities, terrain)
	if err != nil {
		return nil, 0, err
	}

	lock := s.locks.get(networkID)
	lock.Lock()
	defer lock.Unlock()

	network, err := s.load(ctx, networkID)
	if err != nil {
		return nil, 0, err
	}

	if network.Budget < breakdown.TotalCost {
		return nil, 0, apperr.InsufficientBudget(breakdown.TotalCost, network.Budget)
	}

	station := models.Station{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Location:    req.Location,
		Platforms:   req.Platforms,
		StationType: req.StationType,
		Cost:        breakdown.TotalCost,
		Facilities:  req.Facilities,
	}

	network.Budget -= station.Cost
	network.Stations = append(network.Stations, station)

	if err := s.persist(ctx, network); err != nil {
		return nil, 0, err
	}

	log.Info().
		Str("network_id", networkID).
		Str("station_id", station.ID).
		Int64("cost", station.Cost).
		Int64("budget", network.Budget).
		Msg("station built")
	return &station, network.Budget, nil
}

// AddTrackRequest is the payload for track construction
type AddTrackRequest struct {
	TrackType       models.TrackType     `json:"trackType"`
	FromNodeID      string               `json:"fromNodeId"`
	ToNodeID        string               `json:"toNodeId"`
	Waypoints       []models.Coordinates `json:"waypoints"`
	IsDoubleTrack   bool                 `json:"isDoubleTrack"`
	TerrainModifier *float64             `json:"terrainModifier"`
}

// AddTrack validates, prices and builds a track between two existing
// stations. Both endpoints must exist in the network; the route length is
// re-derived server-side and short tracks are rejected.
func (s *Service) AddTrack(ctx context.Context, networkID string, req AddTrackRequest) (*models.Track, int64, error) {
	if req.FromNodeID == "" || req.ToNodeID == "" {
		return nil, 0, apperr.Validationf("fromNodeId and toNodeId are required")
	}
	if len(req.Waypoints) < 2 {
		return nil, 0, apperr.Validationf("waypoints must contain at least 2 coordinates")
	}
	for i, wp := range req.Waypoints {
		if !wp.Valid() {
			return nil, 0, apperr.Validationf("invalid waypoint at index %d: lat must be in [-90,90], lon in [-180,180]", i)
		}
	}
	terrain, err := normalizeTerrain(req.TerrainModifier)
	if err != nil {
		return nil, 0, err
	}

	breakdown, err := cost.TrackCost(req.TrackType, req.Waypoints, req.IsDoubleTrack, terrain)
	if err != nil {
		return nil, 0, err
	}

	lock := s.locks.get(networkID)
	lock.Lock()
	defer lock.Unlock()

	network, err := s.load(ctx, networkID)
	if err != nil {
		return nil, 0, err
	}

	if network.FindStation(req.FromNodeID) == nil {
		return nil, 0, apperr.Validationf("unknown station reference: %s", req.FromNodeID)
	}
	if network.FindStation(req.ToNodeID) == nil {
		return nil, 0, apperr.Validationf("unknown station reference: %s", req.ToNodeID)
	}

	if network.Budget < breakdown.TotalCost {
		return nil, 0, apperr.InsufficientBudget(breakdown.TotalCost, network.Budget)
	}

	track := models.Track{
		ID:              uuid.NewString(),
		TrackType:       req.TrackType,
		FromNodeID:      req.FromNodeID,
		ToNodeID:        req.ToNodeID,
		Waypoints:       req.Waypoints,
		LengthKm:        breakdown.LengthKm,
		SpeedLimit:      breakdown.SpeedLimit,
		IsDoubleTrack:   req.IsDoubleTrack,
		Cost:            breakdown.TotalCost,
		MaintenanceCost: breakdown.MaintenanceCostPerYear,
	}

	network.Budget -= track.Cost
	network.Tracks = append(network.Tracks, track)

	if err := s.persist(ctx, network); err != nil {
		return nil, 0, err
	}

	log.Info().
		Str("network_id", networkID).
		Str("track_id", track.ID).
		Float64("length_km", track.LengthKm).
		Int64("cost", track.Cost).
		Int64("budget", network.Budget).
		Msg("track built")
	return &track, network.Budget, nil
}

// AddCrossoverRequest is the payload for crossover construction
type AddCrossoverRequest struct {
	Name            string               `json:"name"`
	Location        models.Coordinates   `json:"location"`
	CrossoverType   models.CrossoverType `json:"crossoverType"`
	TerrainModifier *float64             `json:"terrainModifier"`
}

// AddCrossover validates, prices and builds a crossover
func (s *Service) AddCrossover(ctx context.Context, networkID string, req AddCrossoverRequest) (*models.Crossover, int64, error) {
	if !req.Location.Valid() {
		return nil, 0, apperr.Validationf("invalid crossover location: lat must be in [-90,90], lon in [-180,180]")
	}
	terrain, err := normalizeTerrain(req.TerrainModifier)
	if err != nil {
		return nil, 0, err
	}

	total, err := cost.CrossoverCost(req.CrossoverType, terrain)
	if err != nil {
		return nil, 0, err
	}

	lock := s.locks.get(networkID)
	lock.Lock()
	defer lock.Unlock()

	network, err := s.load(ctx, networkID)
	if err != nil {
		return nil, 0, err
	}

	if network.Budget < total {
		return nil, 0, apperr.InsufficientBudget(total, network.Budget)
	}

	crossover := models.Crossover{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Location:      req.Location,
		CrossoverType: req.CrossoverType,
		Cost:          total,
	}

	network.Budget -= crossover.Cost
	network.Crossovers = append(network.Crossovers, crossover)

	if err := s.persist(ctx, network); err != nil {
		return nil, 0, err
	}

	log.Info().
		Str("network_id", networkID).
		Str("crossover_id", crossover.ID).
		Int64("cost", crossover.Cost).
		Msg("crossover built")
	return &crossover, network.Budget, nil
}

// RemoveStation demolishes a station, refunding half its recorded cost, and
// cascade-removes every track referencing it. Cascaded tracks are refunded
// at the normal track ratio, same as removing them directly.
func (s *Service) RemoveStation(ctx context.Context, networkID, stationID string) (budget, refund int64, err error) {
	lock := s.locks.get(networkID)
	lock.Lock()
	defer lock.Unlock()

	network, err := s.load(ctx, networkID)
	if err != nil {
		return 0, 0, err
	}

	station := network.FindStation(stationID)
	if station == nil {
		return 0, 0, apperr.NotFoundf("station not found: %s", stationID)
	}

	refund = floorRefund(station.Cost, stationRefundRatio)

	kept := network.Tracks[:0]
	removedTracks := 0
	for _, t := range network.Tracks {
		if t.FromNodeID == stationID || t.ToNodeID == stationID {
			refund += floorRefund(t.Cost, trackRefundRatio)
			removedTracks++
			continue
		}
		kept = append(kept, t)
	}
	network.Tracks = kept

	stations := network.Stations[:0]
	for _, st := range network.Stations {
		if st.ID != stationID {
			stations = append(stations, st)
		}
	}
	network.Stations = stations

	network.Budget += refund

	if err := s.persist(ctx, network); err != nil {
		return 0, 0, err
	}

	log.Info().
		Str("network_id", networkID).
		Str("station_id", stationID).
		Int("cascaded_tracks", removedTracks).
		Int64("refund", refund).
		Msg("station demolished")
	return network.Budget, refund, nil
}

// RemoveTrack demolishes a track, refunding 30% of its recorded cost
func (s *Service) RemoveTrack(ctx context.Context, networkID, trackID string) (budget, refund int64, err error) {
	lock := s.locks.get(networkID)
	lock.Lock()
	defer lock.Unlock()

	network, err := s.load(ctx, networkID)
	if err != nil {
		return 0, 0, err
	}

	track := network.FindTrack(trackID)
	if track == nil {
		return 0, 0, apperr.NotFoundf("track not found: %s", trackID)
	}

	refund = floorRefund(track.Cost, trackRefundRatio)

	kept := network.Tracks[:0]
	for _, t := range network.Tracks {
		if t.ID != trackID {
			kept = append(kept, t)
		}
	}
	network.Tracks = kept
	network.Budget += refund

	if err := s.persist(ctx, network); err != nil {
		return 0, 0, err
	}

	log.Info().
		Str("network_id", networkID).
		Str("track_id", trackID).
		Int64("refund", refund).
		Msg("track demolished")
	return network.Budget, refund, nil
}

// RemoveCrossover demolishes a crossover, refunding 40% of its recorded cost
func (s *Service) RemoveCrossover(ctx context.Context, networkID, crossoverID string) (budget, refund int64, err error) {
	lock := s.locks.get(networkID)
	lock.Lock()
	defer lock.Unlock()

	network, err := s.load(ctx, networkID)
	if err != nil {
		return 0, 0, err
	}

	crossover := network.FindCrossover(crossoverID)
	if crossover == nil {
		return 0, 0, apperr.NotFoundf("crossover not found: %s", crossoverID)
	}

	refund = floorRefund(crossover.Cost, crossoverRefundRatio)

	kept := network.Crossovers[:0]
	for _, c := range network.Crossovers {
		if c.ID != crossoverID {
			kept = append(kept, c)
		}
	}
	network.Crossovers = kept
	network.Budget += refund

	if err := s.persist(ctx, network); err != nil {
		return 0, 0, err
	}

	log.Info().
		Str("network_id", networkID).
		Str("crossover_id", crossoverID).
		Int64("refund", refund).
		Msg("crossover demolished")
	return network.Budget, refund, nil
}

// Stats aggregates the financial state of a network
type Stats struct {
	TotalValue        int64   `json:"totalValue"`
	AnnualMaintenance int64   `json:"annualMaintenance"`
	EstimatedRevenue  int64   `json:"estimatedRevenue"`
	NetIncome         int64   `json:"netIncome"`
	StationCount      int     `json:"stationCount"`
	TrackCount        int     `json:"trackCount"`
	CrossoverCount    int     `json:"crossoverCount"`
	TotalTrackLength  float64 `json:"totalTrackLength"`
}

// ComputeStats aggregates network statistics from the given collections
func ComputeStats(stations []models.Station, tracks []models.Track, crossovers []models.Crossover) Stats {
	maintenance := cost.AnnualMaintenance(tracks)
	revenue := cost.EstimateAnnualRevenue(stations, tracks)

	var totalLength float64
	for _, t := range tracks {
		totalLength += t.LengthKm
	}

	return Stats{
		TotalValue:        cost.NetworkValue(stations, tracks, crossovers),
		AnnualMaintenance: maintenance,
		EstimatedRevenue:  revenue,
		NetIncome:         revenue - maintenance,
		StationCount:      len(stations),
		TrackCount:        len(tracks),
		CrossoverCount:    len(crossovers),
		TotalTrackLength:  totalLength,
	}
}

// GetStats loads a network and aggregates its statistics
func (s *Service) GetStats(ctx context.Context, networkID string) (Stats, error) {
	network, err := s.Get(ctx, networkID)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(network.Stations, network.Tracks, network.Crossovers), nil
}

// load reads the authoritative document, mapping store errors to the API
// error taxonomy
func (s *Service) load(ctx context.Context, id string) (*models.Network, error) {
	network, err := s.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFoundf("network not found: %s", id)
	}
	if err != nil {
		return nil, apperr.Internal("unable to load network", err)
	}
	return network, nil
}

// persist writes the document and refreshes the cache
func (s *Service) persist(ctx context.Context, network *models.Network) error {
	if err := s.repo.Put(ctx, network); err != nil {
		if s.cache != nil {
			s.cache.Invalidate(ctx, network.ID)
		}
		return apperr.Internal("unable to persist network", err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, network)
	}
	return nil
}

// normalizeTerrain defaults an absent modifier to 1.0 and rejects
// non-positive values
func normalizeTerrain(modifier *float64) (float64, error) {
	if modifier == nil {
		return 1.0, nil
	}
	if *modifier <= 0 || math.IsNaN(*modifier) {
		return 0, apperr.Validationf("terrainModifier must be a positive number")
	}
	return *modifier, nil
}

// floorRefund applies a refund ratio, always rounding down
func floorRefund(cost int64, ratio float64) int64 {
	return int64(math.Floor(float64(cost) * ratio))
}
