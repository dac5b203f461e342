package geo

import (
	"math"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
)

// earthRadiusKm is the mean Earth radius used by every great-circle
// computation in the game. All costs derive from it, so it must not change.
const earthRadiusKm = 6371.0

// nearestPointSamples is the sampling resolution of NearestPointOnSegment.
// The returned point is accurate to roughly 1% of the segment length.
const nearestPointSamples = 100

// Distance returns the great-circle distance between two coordinates in
// kilometers using the Haversine formula.
func Distance(from, to models.Coordinates) float64 {
	lat1Rad := toRadians(from.Lat)
	lat2Rad := toRadians(to.Lat)
	deltaLat := toRadians(to.Lat - from.Lat)
	deltaLon := toRadians(to.Lon - from.Lon)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// RouteLength returns the summed length of the polyline in kilometers.
// Fewer than two waypoints have zero length.
func RouteLength(waypoints []models.Coordinates) float64 {
	if len(waypoints) < 2 {
		return 0
	}

	total := 0.0
	for i := 0; i < len(waypoints)-1; i++ {
		total += Distance(waypoints[i], waypoints[i+1])
	}
	return total
}

// Bearing returns the initial compass bearing from one point to another,
// in degrees in [0, 360).
func Bearing(from, to models.Coordinates) float64 {
	dLon := toRadians(to.Lon - from.Lon)
	lat1 := toRadians(from.Lat)
	lat2 := toRadians(to.Lat)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	bearing := toDegrees(math.Atan2(y, x))
	return math.Mod(bearing+360, 360)
}

// IntermediatePoint returns the point at the given fraction (0..1) along the
// great circle between from and to. Coincident endpoints would divide by
// zero in the interpolation formula, so they are returned directly.
func IntermediatePoint(from, to models.Coordinates, fraction float64) models.Coordinates {
	if from == to {
		return from
	}

	lat1 := toRadians(from.Lat)
	lon1 := toRadians(from.Lon)
	lat2 := toRadians(to.Lat)
	lon2 := toRadians(to.Lon)

	d := 2 * math.Asin(math.Sqrt(
		math.Pow(math.Sin((lat1-lat2)/2), 2)+
			math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin((lon1-lon2)/2), 2)))

	a := math.Sin((1-fraction)*d) / math.Sin(d)
	b := math.Sin(fraction*d) / math.Sin(d)

	x := a*math.Cos(lat1)*math.Cos(lon1) + b*math.Cos(lat2)*math.Cos(lon2)
	y := a*math.Cos(lat1)*math.Sin(lon1) + b*math.Cos(lat2)*math.Sin(lon2)
	z := a*math.Sin(lat1) + b*math.Sin(lat2)

	return models.Coordinates{
		Lat: toDegrees(math.Atan2(z, math.Sqrt(x*x+y*y))),
		Lon: toDegrees(math.Atan2(y, x)),
	}
}

// NearestPoint is the result of a nearest-point-on-segment query
type NearestPoint struct {
	Point      models.Coordinates `json:"point"`
	DistanceKm float64            `json:"distanceKm"`
}

// NearestPointOnSegment approximates the closest point on the great-circle
// segment to the given point by sampling the segment at a fixed resolution.
// It is not an exact projection; accuracy is bounded by nearestPointSamples.
func NearestPointOnSegment(point, segStart, segEnd models.Coordinates) NearestPoint {
	nearest := segStart
	minDist := math.Inf(1)

	for i := 0; i <= nearestPointSamples; i++ {
		fraction := float64(i) / nearestPointSamples
		sample := IntermediatePoint(segStart, segEnd, fraction)
		if d := Distance(point, sample); d < minDist {
			minDist = d
			nearest = sample
		}
	}

	return NearestPoint{Point: nearest, DistanceKm: minDist}
}

// BoundingBox is an axis-aligned box in degrees
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// GetBoundingBox returns the bounding box of the given coordinates.
// An empty input yields the degenerate zero box.
func GetBoundingBox(coords []models.Coordinates) BoundingBox {
	if len(coords) == 0 {
		return BoundingBox{}
	}

	box := BoundingBox{
		MinLat: coords[0].Lat,
		MaxLat: coords[0].Lat,
		MinLon: coords[0].Lon,
		MaxLon: coords[0].Lon,
	}
	for _, c := range coords {
		box.MinLat = math.Min(box.MinLat, c.Lat)
		box.MaxLat = math.Max(box.MaxLat, c.Lat)
		box.MinLon = math.Min(box.MinLon, c.Lon)
		box.MaxLon = math.Max(box.MaxLon, c.Lon)
	}
	return box
}

// Overlaps reports whether two bounding boxes intersect
func (b BoundingBox) Overlaps(other BoundingBox) bool {
	return !(b.MaxLat < other.MinLat ||
		b.MinLat > other.MaxLat ||
		b.MaxLon < other.MinLon ||
		b.MinLon > other.MaxLon)
}

// intersectThresholdKm is the slack used by the distance-sum heuristic below
const intersectThresholdKm = 0.1

// SegmentsIntersect reports whether two segments likely cross. A bounding-box
// check rejects distant pairs first; the remaining cases use a distance-sum
// heuristic rather than an exact intersection test.
func SegmentsIntersect(a1, a2, b1, b2 models.Coordinates) bool {
	boxA := GetBoundingBox([]models.Coordinates{a1, a2})
	boxB := GetBoundingBox([]models.Coordinates{b1, b2})
	if !boxA.Overlaps(boxB) {
		return false
	}

	d1 := Distance(a1, b1)
	d2 := Distance(a2, b2)
	d3 := Distance(a1, b2)
	d4 := Distance(a2, b1)

	lenA := Distance(a1, a2)
	lenB := Distance(b1, b2)

	return d1+d2 < lenA+lenB+intersectThresholdKm ||
		d3+d4 < lenA+lenB+intersectThresholdKm
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func toDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}
