package geo

import (
	"fmt"

	"github.com/im7mortal/UTM"
	"github.com/paulmach/orb"
)

// ToPixel projects a WGS84 lon/lat point into pixel space of a raster in a
// UTM coordinate system. The UTM zone is derived from the longitude rather
// than assumed, so scenes from any zone resolve correctly.
func ToPixel(t Affine, lon, lat float64) (col, row int, err error) {
	easting, northing, _, _, err := UTM.FromLatLon(lat, lon, lat >= 0)
	if err != nil {
		return 0, 0, fmt.Errorf("projecting lon/lat (%f, %f): %w", lon, lat, err)
	}
	c, r, err := t.InvertPoint(easting, northing)
	if err != nil {
		return 0, 0, err
	}
	return int(c), int(r), nil
}

// WindowFromBound resolves a WGS84 bound (from a bbox or geometry AOI) to a
// snapped pixel window on a raster with the given transform and size.
func WindowFromBound(t Affine, bound orb.Bound, width, height int) (Window, error) {
	x1, y1, err := ToPixel(t, bound.Min[0], bound.Min[1])
	if err != nil {
		return Window{}, err
	}
	x2, y2, err := ToPixel(t, bound.Max[0], bound.Max[1])
	if err != nil {
		return Window{}, err
	}
	return Snap60(x1, y1, x2, y2, width, height)
}

// WindowFromLonLat resolves the legacy roi_lon_lat corner pair.
func WindowFromLonLat(t Affine, lon1, lat1, lon2, lat2 float64, width, height int) (Window, error) {
	x1, y1, err := ToPixel(t, lon1, lat1)
	if err != nil {
		return Window{}, err
	}
	x2, y2, err := ToPixel(t, lon2, lat2)
	if err != nil {
		return Window{}, err
	}
	return Snap60(x1, y1, x2, y2, width, height)
}
