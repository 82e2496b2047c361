package domain

// GeoPoint represents a geographic coordinate (WGS 84).
// Coordinate order is (lon, lat) everywhere in this codebase, matching the
// GeoJSON convention used on the wire.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
}

// Contains reports whether p lies inside the box (inclusive).
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon &&
		p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}
