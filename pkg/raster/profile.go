package raster

import "blockforge/pkg/geo"

// Profile is the georeferencing profile of a raster dataset, the subset of
// creation options the block cares about.
type Profile struct {
	Driver    string     `json:"driver"`
	DType     string     `json:"dtype"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Count     int        `json:"count"`
	Transform geo.Affine `json:"transform"`
	CRS       string     `json:"crs,omitempty"`
}

// OutputProfile derives the profile of the super-resolved image from the
// 10 m input dataset and the resolved window. The output is always a
// float32 GTiff; its transform is the scene transform shifted to the
// window origin. Band count is the super-resolved bands plus, when
// copyOriginals is set, the native 10 m bands that ride along.
func OutputProfile(in Profile, win geo.Window, plan BandPlan, copyOriginals bool) Profile {
	count := len(plan.SuperResolved())
	if copyOriginals {
		count += len(plan.B10.Bands)
	}
	return Profile{
		Driver:    "GTiff",
		DType:     "float32",
		Width:     win.Width(),
		Height:    win.Height(),
		Count:     count,
		Transform: in.Transform.Translate(float64(win.MinX), float64(win.MinY)),
		CRS:       in.CRS,
	}
}
