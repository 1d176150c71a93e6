package params

import (
	"fmt"

	"github.com/paulmach/orb"
)

// AOIKind identifies which spatial filter a job supplied.
type AOIKind string

const (
	AOINone     AOIKind = "none"
	AOIBbox     AOIKind = "bbox"
	AOIGeometry AOIKind = "geometry"
	AOIContains AOIKind = "contains"
	AOIPixel    AOIKind = "roi_x_y"
	AOILonLat   AOIKind = "roi_lon_lat"
)

// AOI is the normalized spatial filter of a job.
type AOI struct {
	Kind     AOIKind
	Bound    orb.Bound    // for bbox and geometry kinds
	Geometry orb.Geometry // set for geometry kinds
	Pixel    [4]int       // x1, y1, x2, y2
	LonLat   [4]float64   // lon1, lat1, lon2, lat2
}

// Validate checks the parameter set. The platform convention documents the
// spatial filters as mutually exclusive without enforcing it; here an
// ambiguous combination is rejected outright.
func (p Params) Validate() error {
	set := 0
	if len(p.Bbox) > 0 {
		set++
		if len(p.Bbox) != 4 {
			return fmt.Errorf("bbox must have four elements [west, south, east, north], got %d", len(p.Bbox))
		}
		if p.Bbox[0] >= p.Bbox[2] || p.Bbox[1] >= p.Bbox[3] {
			return fmt.Errorf("bbox [%v] is empty: west/south must be less than east/north", p.Bbox)
		}
	}
	if p.Intersects != nil {
		set++
	}
	if p.Contains != nil {
		set++
	}
	if len(p.ROIPixel) > 0 {
		set++
		if len(p.ROIPixel) != 4 {
			return fmt.Errorf("roi_x_y must have four elements [x1, y1, x2, y2], got %d", len(p.ROIPixel))
		}
	}
	if len(p.ROILonLat) > 0 {
		set++
		if len(p.ROILonLat) != 4 {
			return fmt.Errorf("roi_lon_lat must have four elements [lon1, lat1, lon2, lat2], got %d", len(p.ROILonLat))
		}
		for _, i := range []int{0, 2} {
			if p.ROILonLat[i] < -180 || p.ROILonLat[i] > 180 {
				return fmt.Errorf("roi_lon_lat longitude %v out of range", p.ROILonLat[i])
			}
		}
		for _, i := range []int{1, 3} {
			if p.ROILonLat[i] < -90 || p.ROILonLat[i] > 90 {
				return fmt.Errorf("roi_lon_lat latitude %v out of range", p.ROILonLat[i])
			}
		}
	}

	if set > 1 {
		return fmt.Errorf("only one of bbox, intersects, contains, roi_x_y or roi_lon_lat may be set, got %d", set)
	}
	if p.ClipToAOI && set == 0 {
		return fmt.Errorf("clip_to_aoi requires a spatial filter")
	}
	return nil
}

// ClipGeometry returns the geometry an output clipped to this filter
// covers, or nil when the filter has no lon/lat footprint (pixel ROIs and
// unfiltered jobs).
func (a AOI) ClipGeometry() orb.Geometry {
	switch a.Kind {
	case AOIBbox:
		return a.Bound.ToPolygon()
	case AOIGeometry, AOIContains:
		return a.Geometry
	default:
		return nil
	}
}

// AOI returns the normalized spatial filter. Call Validate first; an
// invalid parameter set yields an error here too.
func (p Params) AOI() (AOI, error) {
	if err := p.Validate(); err != nil {
		return AOI{}, err
	}

	switch {
	case len(p.Bbox) == 4:
		return AOI{
			Kind: AOIBbox,
			Bound: orb.Bound{
				Min: orb.Point{p.Bbox[0], p.Bbox[1]},
				Max: orb.Point{p.Bbox[2], p.Bbox[3]},
			},
		}, nil
	case p.Intersects != nil:
		g := p.Intersects.Geometry()
		return AOI{Kind: AOIGeometry, Geometry: g, Bound: g.Bound()}, nil
	case p.Contains != nil:
		g := p.Contains.Geometry()
		return AOI{Kind: AOIContains, Geometry: g, Bound: g.Bound()}, nil
	case len(p.ROIPixel) == 4:
		return AOI{
			Kind: AOIPixel,
			Pixel: [4]int{
				int(p.ROIPixel[0]), int(p.ROIPixel[1]),
				int(p.ROIPixel[2]), int(p.ROIPixel[3]),
			},
		}, nil
	case len(p.ROILonLat) == 4:
		return AOI{
			Kind:   AOILonLat,
			LonLat: [4]float64{p.ROILonLat[0], p.ROILonLat[1], p.ROILonLat[2], p.ROILonLat[3]},
		}, nil
	default:
		return AOI{Kind: AOINone}, nil
	}
}
