// Package params handles the job parameters a block invocation receives
// from the platform: area-of-interest filters plus the block's own
// switches, with manifest defaults applied for anything omitted.
package params

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"blockforge/pkg/manifest"
)

// TaskParametersEnv is the environment variable the platform injects the
// job parameter JSON into.
const TaskParametersEnv = "BLOCK_TASK_PARAMETERS"

// Params are the parameters of one job.
type Params struct {
	// AOI filters; at most one may be set.
	Bbox       []float64         `json:"bbox,omitempty"`
	Intersects *geojson.Geometry `json:"intersects,omitempty"`
	Contains   *geojson.Geometry `json:"contains,omitempty"`
	// Legacy pixel/lon-lat ROIs.
	ROIPixel  []float64 `json:"roi_x_y,omitempty"`
	ROILonLat []float64 `json:"roi_lon_lat,omitempty"`

	CopyOriginalBands bool `json:"copy_original_bands"`
	ClipToAOI         bool `json:"clip_to_aoi"`
}

// Defaults returns the built-in parameter defaults, used when no manifest
// is available to supply them.
func Defaults() Params {
	return Params{CopyOriginalBands: true, ClipToAOI: false}
}

// Parse decodes a parameter document and fills omitted fields from the
// manifest's declared defaults (or the built-in defaults when m is nil).
func Parse(raw []byte, m *manifest.Manifest) (Params, error) {
	// decode through a pointer-typed shadow so "omitted" and "false" are
	// distinguishable for the boolean switches
	var shadow struct {
		Bbox              []float64         `json:"bbox"`
		Intersects        *geojson.Geometry `json:"intersects"`
		Contains          *geojson.Geometry `json:"contains"`
		ROIPixel          []float64         `json:"roi_x_y"`
		ROILonLat         []float64         `json:"roi_lon_lat"`
		CopyOriginalBands *bool             `json:"copy_original_bands"`
		ClipToAOI         *bool             `json:"clip_to_aoi"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &shadow); err != nil {
			return Params{}, fmt.Errorf("unmarshaling job parameters: %w", err)
		}
	}

	p := Defaults()
	if m != nil {
		applyManifestDefaults(&p, m)
	}

	if shadow.Bbox != nil {
		p.Bbox = shadow.Bbox
	}
	if shadow.Intersects != nil {
		p.Intersects = shadow.Intersects
	}
	if shadow.Contains != nil {
		p.Contains = shadow.Contains
	}
	if shadow.ROIPixel != nil {
		p.ROIPixel = shadow.ROIPixel
	}
	if shadow.ROILonLat != nil {
		p.ROILonLat = shadow.ROILonLat
	}
	if shadow.CopyOriginalBands != nil {
		p.CopyOriginalBands = *shadow.CopyOriginalBands
	}
	if shadow.ClipToAOI != nil {
		p.ClipToAOI = *shadow.ClipToAOI
	}
	return p, nil
}

func applyManifestDefaults(p *Params, m *manifest.Manifest) {
	for name, raw := range m.ParameterDefaults() {
		switch name {
		case "copy_original_bands":
			var v bool
			if err := json.Unmarshal(raw, &v); err == nil {
				p.CopyOriginalBands = v
			}
		case "clip_to_aoi":
			var v bool
			if err := json.Unmarshal(raw, &v); err == nil {
				p.ClipToAOI = v
			}
		case "bbox":
			var v []float64
			if err := json.Unmarshal(raw, &v); err == nil {
				p.Bbox = v
			}
		}
	}
}

// FromEnv reads parameters from the platform-injected environment
// variable. An unset or empty variable yields the defaults.
func FromEnv(m *manifest.Manifest) (Params, error) {
	return Parse([]byte(os.Getenv(TaskParametersEnv)), m)
}

// FromFile reads a parameter JSON file.
func FromFile(path string, m *manifest.Manifest) (Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("reading parameters %s: %w", path, err)
	}
	p, err := Parse(raw, m)
	if err != nil {
		return Params{}, fmt.Errorf("parameters %s: %w", path, err)
	}
	return p, nil
}
