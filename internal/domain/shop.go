package domain

import "math"

// ShopRecord is one normalized row of the shop feed. Records are immutable
// once created; ids are assigned 1..N over the filtered rows of a single
// normalization pass and are only stable within that pass.
type ShopRecord struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Specialty   string   `json:"specialty"`
	Description string   `json:"description"`
	Country     string   `json:"country"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Tags        []string `json:"tags"`
	Verified    bool     `json:"verified"`
	HallOfFame  bool     `json:"hallOfFame"`
	Published   bool     `json:"-"`
}

// LatLng is a geographic position in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point is a pixel position in the surface's projected coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position returns the record's coordinates as a LatLng.
func (r ShopRecord) Position() LatLng {
	return LatLng{Lat: r.Lat, Lng: r.Lng}
}

// HasFiniteCoordinates reports whether both coordinates parsed to finite
// numbers. Marker creation re-checks this independently of the normalizer so
// manually edited data cannot produce NaN markers.
func (r ShopRecord) HasFiniteCoordinates() bool {
	return isFinite(r.Lat) && isFinite(r.Lng)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
