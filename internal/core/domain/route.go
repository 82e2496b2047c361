package domain

// RouteTypeRoad and RouteTypeTerrain identify the two routing modes. They are
// part of cache keys and published event subjects, so they must stay stable.
const (
	RouteTypeRoad    = "road"
	RouteTypeTerrain = "terrain"
)

// ElevationProfilePoint is one sample of the elevation profile along a
// computed route.
type ElevationProfilePoint struct {
	Lon        float64 `json:"lon"`
	Lat        float64 `json:"lat"`
	Elevation  float64 `json:"elevation"`
	DistanceKm float64 `json:"distanceKm"`
}

// TerrainRoute is a computed cross-country route with its elevation profile.
type TerrainRoute struct {
	Coordinates      []GeoPoint              `json:"coordinates"`
	DistanceKm       float64                 `json:"distanceKm"`
	ElevationProfile []ElevationProfilePoint `json:"elevationProfile"`
}

// RoadRoute is a route computed by the external road-graph service.
type RoadRoute struct {
	Coordinates []GeoPoint `json:"coordinates"`
	DistanceKm  float64    `json:"distanceKm"`
	DurationMin float64    `json:"durationMin"`
}

// ElevationProfile is a standalone profile for an arbitrary coordinate
// sequence, independent of any route computation.
type ElevationProfile struct {
	Points       []ElevationProfilePoint `json:"points"`
	MaxElevation float64                 `json:"maxElevation"`
	MinElevation float64                 `json:"minElevation"`
	TotalClimb   float64                 `json:"totalClimb"`
}
