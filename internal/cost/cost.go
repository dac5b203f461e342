package cost

import (
	"math"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/apperr"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/geo"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
)

// All amounts are whole currency units (euros).

// stationBaseCosts is the fixed base cost per station class
var stationBaseCosts = map[models.StationType]float64{
	models.StationLocal:     5_000_000,
	models.StationRegional:  20_000_000,
	models.StationIntercity: 50_000_000,
	models.StationHub:       150_000_000,
}

// platformRanges is the legal platform count per station class.
// Out-of-range counts are rejected, never clamped.
var platformRanges = map[models.StationType]struct{ Min, Max int }{
	models.StationLocal:     {1, 4},
	models.StationRegional:  {5, 10},
	models.StationIntercity: {11, 20},
	models.StationHub:       {21, 30},
}

// trackCostsPerKm is the construction cost per kilometer per track class
var trackCostsPerKm = map[models.TrackType]float64{
	models.TrackHighSpeed:      10_000_000,
	models.TrackIntercity:      5_000_000,
	models.TrackNonElectrified: 2_000_000,
}

// maintenancePerKmYear is the yearly upkeep per kilometer per track class
var maintenancePerKmYear = map[models.TrackType]float64{
	models.TrackHighSpeed:      50_000,
	models.TrackIntercity:      30_000,
	models.TrackNonElectrified: 15_000,
}

// trackSpeedLimits in km/h, a pure function of track class
var trackSpeedLimits = map[models.TrackType]int{
	models.TrackHighSpeed:      300,
	models.TrackIntercity:      200,
	models.TrackNonElectrified: 120,
}

var crossoverBaseCosts = map[models.CrossoverType]float64{
	models.CrossoverSimple:         500_000,
	models.CrossoverJunction:       2_000_000,
	models.CrossoverFlyingJunction: 10_000_000,
}

// Facility surcharges as fractions of the platform cost
const (
	facilityParking    = 0.05
	facilityShops      = 0.05
	facilityBikeRental = 0.02
)

// MinTrackLengthKm is the shortest buildable track
const MinTrackLengthKm = 0.5

// StationBreakdown decomposes a station construction cost. The breakdown
// fields are rounded independently, so they do not generally sum to
// TotalCost. Only TotalCost is authoritative.
type StationBreakdown struct {
	BaseCost       int64 `json:"baseCost"`
	PlatformCost   int64 `json:"platformCost"`
	FacilitiesCost int64 `json:"facilitiesCost"`
	TerrainCost    int64 `json:"terrainCost"`
	TotalCost      int64 `json:"totalCost"`
}

// TrackBreakdown decomposes a track construction cost, same rounding caveat
// as StationBreakdown.
type TrackBreakdown struct {
	LengthKm               float64 `json:"lengthKm"`
	CostPerKm              int64   `json:"costPerKm"`
	BaseCost               int64   `json:"baseCost"`
	DoubleTrackCost        int64   `json:"doubleTrackCost"`
	TerrainCost            int64   `json:"terrainCost"`
	TotalCost              int64   `json:"totalCost"`
	MaintenanceCostPerYear int64   `json:"maintenanceCostPerYear"`
	SpeedLimit             int     `json:"speedLimit"`
}

// ValidStationType reports whether t is a known station class
func ValidStationType(t models.StationType) bool {
	_, ok := stationBaseCosts[t]
	return ok
}

// ValidTrackType reports whether t is a known track class
func ValidTrackType(t models.TrackType) bool {
	_, ok := trackCostsPerKm[t]
	return ok
}

// ValidCrossoverType reports whether t is a known crossover class
func ValidCrossoverType(t models.CrossoverType) bool {
	_, ok := crossoverBaseCosts[t]
	return ok
}

// SpeedLimit returns the fixed speed limit for a track class, in km/h
func SpeedLimit(trackType models.TrackType) int {
	return trackSpeedLimits[trackType]
}

// ValidatePlatformCount rejects platform counts outside the class range
func ValidatePlatformCount(platforms int, stationType models.StationType) error {
	if platforms < 1 || platforms > 30 {
		return apperr.Validationf("platform count must be between 1 and 30")
	}
	r, ok := platformRanges[stationType]
	if !ok {
		return apperr.Validationf("unknown station type: %s", stationType)
	}
	if platforms < r.Min || platforms > r.Max {
		return apperr.Validationf("%s stations must have %d-%d platforms", stationType, r.Min, r.Max)
	}
	return nil
}

// StationCost computes the construction cost of a station.
// terrainModifier scales the total linearly; pass 1.0 for flat terrain.
func StationCost(platforms int, stationType models.StationType, facilities models.Facilities, terrainModifier float64) (StationBreakdown, error) {
	if err := ValidatePlatformCount(platforms, stationType); err != nil {
		return StationBreakdown{}, err
	}

	baseCost := stationBaseCosts[stationType]

	platformMultiplier := 1 + float64(platforms)/10
	platformCost := baseCost * platformMultiplier

	facilitiesMultiplier := 1.0
	if facilities.Parking {
		facilitiesMultiplier += facilityParking
	}
	if facilities.Shops {
		facilitiesMultiplier += facilityShops
	}
	if facilities.BikeRental {
		facilitiesMultiplier += facilityBikeRental
	}

	return StationBreakdown{
		BaseCost:       int64(baseCost),
		PlatformCost:   roundMoney(platformCost),
		FacilitiesCost: roundMoney(platformCost * (facilitiesMultiplier - 1)),
		TerrainCost:    roundMoney(platformCost * (terrainModifier - 1)),
		TotalCost:      roundMoney(platformCost * facilitiesMultiplier * terrainModifier),
	}, nil
}

// TrackCost computes the construction and upkeep cost of a track. The
// polyline length is derived here; tracks under MinTrackLengthKm are
// rejected. Maintenance scales with the double-track multiplier but not the
// terrain modifier.
func TrackCost(trackType models.TrackType, waypoints []models.Coordinates, isDoubleTrack bool, terrainModifier float64) (TrackBreakdown, error) {
	costPerKm, ok := trackCostsPerKm[trackType]
	if !ok {
		return TrackBreakdown{}, apperr.Validationf("unknown track type: %s", trackType)
	}

	lengthKm := geo.RouteLength(waypoints)
	if lengthKm < MinTrackLengthKm {
		return TrackBreakdown{}, apperr.Validationf("track too short. Minimum length: %.1f km", MinTrackLengthKm)
	}

	baseCost := costPerKm * lengthKm

	doubleTrackMultiplier := 1.0
	if isDoubleTrack {
		doubleTrackMultiplier = 1.5
	}

	return TrackBreakdown{
		LengthKm:               round2(lengthKm),
		CostPerKm:              int64(costPerKm),
		BaseCost:               roundMoney(baseCost),
		DoubleTrackCost:        roundMoney(baseCost * (doubleTrackMultiplier - 1)),
		TerrainCost:            roundMoney(baseCost * (terrainModifier - 1)),
		TotalCost:              roundMoney(baseCost * doubleTrackMultiplier * terrainModifier),
		MaintenanceCostPerYear: roundMoney(maintenancePerKmYear[trackType] * lengthKm * doubleTrackMultiplier),
		SpeedLimit:             trackSpeedLimits[trackType],
	}, nil
}

// CrossoverCost computes the fixed cost of a crossover scaled by terrain
func CrossoverCost(crossoverType models.CrossoverType, terrainModifier float64) (int64, error) {
	baseCost, ok := crossoverBaseCosts[crossoverType]
	if !ok {
		return 0, apperr.Validationf("unknown crossover type: %s", crossoverType)
	}
	return roundMoney(baseCost * terrainModifier), nil
}

// urbanCenters are the city centers that trigger the urban terrain modifier
var urbanCenters = []models.Coordinates{
	{Lat: 52.37, Lon: 4.90},  // Amsterdam
	{Lat: 51.92, Lon: 4.47},  // Rotterdam
	{Lat: 48.86, Lon: 2.35},  // Paris
	{Lat: 50.85, Lon: 4.35},  // Brussels
	{Lat: 51.51, Lon: -0.13}, // London
}

// EstimateTerrainModifier estimates a construction cost multiplier from the
// mean position of the waypoints. Placeholder heuristic: a hard-coded Alpine
// box counts as mountainous and proximity to a handful of city centers as
// urban. A real elevation lookup can replace this without changing callers.
func EstimateTerrainModifier(waypoints []models.Coordinates) float64 {
	if len(waypoints) == 0 {
		return 1.0
	}

	var sumLat, sumLon float64
	for _, p := range waypoints {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	avgLat := sumLat / float64(len(waypoints))
	avgLon := sumLon / float64(len(waypoints))

	// European Alps, rough box
	if avgLat > 45 && avgLat < 48 && avgLon > 6 && avgLon < 11 {
		return 1.8
	}

	for _, city := range urbanCenters {
		dist := math.Sqrt(math.Pow(avgLat-city.Lat, 2) + math.Pow(avgLon-city.Lon, 2))
		if dist < 0.2 { // within ~20km of the center
			return 1.5
		}
	}

	return 1.0
}

// TerrainBand maps a modifier to its human-readable band
func TerrainBand(modifier float64) string {
	switch {
	case modifier > 1.6:
		return "mountainous"
	case modifier > 1.3:
		return "urban"
	case modifier > 1.1:
		return "hilly"
	default:
		return "flat"
	}
}

// NetworkValue sums the recorded cost of every built entity
func NetworkValue(stations []models.Station, tracks []models.Track, crossovers []models.Crossover) int64 {
	var total int64
	for _, s := range stations {
		total += s.Cost
	}
	for _, t := range tracks {
		total += t.Cost
	}
	for _, c := range crossovers {
		total += c.Cost
	}
	return total
}

// AnnualMaintenance sums the recorded yearly upkeep of every track
func AnnualMaintenance(tracks []models.Track) int64 {
	var total int64
	for _, t := range tracks {
		total += t.MaintenanceCost
	}
	return total
}

// stationRevenue is the yearly base revenue per station class
var stationRevenue = map[models.StationType]float64{
	models.StationLocal:     500_000,
	models.StationRegional:  2_000_000,
	models.StationIntercity: 5_000_000,
	models.StationHub:       15_000_000,
}

// trackRevenuePerKm is the yearly revenue per kilometer per track class
var trackRevenuePerKm = map[models.TrackType]float64{
	models.TrackHighSpeed:      100_000,
	models.TrackIntercity:      50_000,
	models.TrackNonElectrified: 20_000,
}

// EstimateAnnualRevenue estimates yearly revenue. Station and track revenue
// are summed, then scaled by a superlinear network-effect bonus
// (stations^1.2 / 10) that rewards larger connected networks.
func EstimateAnnualRevenue(stations []models.Station, tracks []models.Track) int64 {
	var stationTotal float64
	for _, s := range stations {
		stationTotal += stationRevenue[s.StationType] * (1 + float64(s.Platforms)/10)
	}

	var trackTotal float64
	for _, t := range tracks {
		trackTotal += trackRevenuePerKm[t.TrackType] * t.LengthKm
	}

	networkBonus := 0.0
	if len(stations) > 1 {
		networkBonus = math.Pow(float64(len(stations)), 1.2) / 10
	}

	return roundMoney((stationTotal + trackTotal) * (1 + networkBonus))
}

// roundMoney rounds to the nearest whole currency unit
func roundMoney(v float64) int64 {
	return int64(math.Round(v))
}

// round2 rounds to 2 decimals for reporting
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
