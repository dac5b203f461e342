package models

// SchemaVersion is written into every persisted network document so that
// future layout changes can be migrated.
const SchemaVersion = 1

// StationType determines base cost and the legal platform-count range
type StationType string

const (
	StationLocal     StationType = "local"
	StationRegional  StationType = "regional"
	StationIntercity StationType = "intercity"
	StationHub       StationType = "hub"
)

// TrackType determines per-km cost, maintenance rate, and speed limit
type TrackType string

const (
	TrackHighSpeed      TrackType = "hst"
	TrackIntercity      TrackType = "ic"
	TrackNonElectrified TrackType = "non_electrified"
)

// CrossoverType determines the fixed crossover cost
type CrossoverType string

const (
	CrossoverSimple         CrossoverType = "simple"
	CrossoverJunction       CrossoverType = "junction"
	CrossoverFlyingJunction CrossoverType = "flying_junction"
)

// Coordinates is a (lat, lon) pair in degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair lies inside the WGS84 range
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Facilities are optional station amenities, each adding a fixed percentage
// to the construction cost
type Facilities struct {
	Parking    bool `json:"parking,omitempty"`
	Shops      bool `json:"shops,omitempty"`
	BikeRental bool `json:"bikeRental,omitempty"`
}

// Station is a built station. Cost is fixed at creation time and never
// recomputed.
type Station struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Location    Coordinates `json:"location"`
	Platforms   int         `json:"platforms"`
	StationType StationType `json:"stationType"`
	Cost        int64       `json:"cost"`
	Facilities  Facilities  `json:"facilities"`
}

// Track is a built track segment. Length, speed limit and both cost fields
// are derived at creation time and stored.
type Track struct {
	ID              string        `json:"id"`
	TrackType       TrackType     `json:"trackType"`
	FromNodeID      string        `json:"fromNodeId"`
	ToNodeID        string        `json:"toNodeId"`
	Waypoints       []Coordinates `json:"waypoints"`
	LengthKm        float64       `json:"lengthKm"`
	SpeedLimit      int           `json:"speedLimit"`
	IsDoubleTrack   bool          `json:"isDoubleTrack"`
	Cost            int64         `json:"cost"`
	MaintenanceCost int64         `json:"maintenanceCost"`
}

// Crossover is a built junction between tracks
type Crossover struct {
	ID            string        `json:"id"`
	Name          string        `json:"name,omitempty"`
	Location      Coordinates   `json:"location"`
	CrossoverType CrossoverType `json:"crossoverType"`
	Cost          int64         `json:"cost"`
}

// Network is the complete persisted state of one game session
type Network struct {
	SchemaVersion int         `json:"schemaVersion"`
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Budget        int64       `json:"budget"`
	Income        int64       `json:"income"`
	Expenses      int64       `json:"expenses"`
	GameYear      int         `json:"gameYear"`
	GameMonth     int         `json:"gameMonth"`
	Stations      []Station   `json:"stations"`
	Tracks        []Track     `json:"tracks"`
	Crossovers    []Crossover `json:"crossovers"`
}

// FindStation returns the station with the given id, or nil
func (n *Network) FindStation(id string) *Station {
	for i := range n.Stations {
		if n.Stations[i].ID == id {
			return &n.Stations[i]
		}
	}
	return nil
}

// FindTrack returns the track with the given id, or nil
func (n *Network) FindTrack(id string) *Track {
	for i := range n.Tracks {
		if n.Tracks[i].ID == id {
			return &n.Tracks[i]
		}
	}
	return nil
}

// FindCrossover returns the crossover with the given id, or nil
func (n *Network) FindCrossover(id string) *Crossover {
	for i := range n.Crossovers {
		if n.Crossovers[i].ID == id {
			return &n.Crossovers[i]
		}
	}
	return nil
}
