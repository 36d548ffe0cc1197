// Package surface streams map drawing operations to connected clients over
// a websocket and feeds their input events back into a browsing session.
package surface

import (
	"math"

	"github.com/theodesde/retrohunt-app/internal/domain"
)

// Web Mercator uses a 256px world tile at zoom zero and cannot represent
// latitudes beyond this bound.
const (
	tileSize    = 256.0
	maxLatitude = 85.05112878
)

// Project converts a geographic position to pixel coordinates at the given
// zoom level. Latitudes outside the projectable range are clamped.
func Project(pos domain.LatLng, zoom int) domain.Point {
	scale := tileSize * math.Exp2(float64(zoom))
	lat := clampLatitude(pos.Lat)

	siny := math.Sin(lat * math.Pi / 180)
	x := scale * (pos.Lng + 180) / 360
	y := scale * (0.5 - math.Log((1+siny)/(1-siny))/(4*math.Pi))
	return domain.Point{X: x, Y: y}
}

// Unproject converts pixel coordinates at the given zoom level back to a
// geographic position. It is the inverse of Project inside the projectable
// range.
func Unproject(pt domain.Point, zoom int) domain.LatLng {
	scale := tileSize * math.Exp2(float64(zoom))

	lng := pt.X/scale*360 - 180
	n := math.Pi - 2*math.Pi*pt.Y/scale
	lat := 180 / math.Pi * math.Atan(math.Sinh(n))
	return domain.LatLng{Lat: lat, Lng: lng}
}

func clampLatitude(lat float64) float64 {
	if lat > maxLatitude {
		return maxLatitude
	}
	if lat < -maxLatitude {
		return -maxLatitude
	}
	return lat
}
