// Package pipeline drives a super-resolution job from parameter loading
// through inference to output metadata.
package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"blockforge/pkg/config"
	"blockforge/pkg/geo"
	"blockforge/pkg/manifest"
	"blockforge/pkg/params"
	"blockforge/pkg/raster"
	"blockforge/pkg/runner"
)

// Scene is the per-product working set a job accumulates while the
// stages run.
type Scene struct {
	SafePath   string // product directory, relative to the input dir
	ProductXML string // absolute MTD metadata path inside the product
	OutputName string

	Data10, Data20, Data60 raster.Dataset
	Win10, Win20, Win60    geo.Window

	Plan    raster.BandPlan
	Profile raster.Profile
}

// State carries everything the stages share for one job.
type State struct {
	JobID  string
	Config config.Config
	Runner runner.CommandRunner

	Manifest *manifest.Manifest
	Params   params.Params
	AOI      params.AOI

	Input  *geojson.FeatureCollection
	Scenes []*Scene
}

func NewState(cfg config.Config, cr runner.CommandRunner) *State {
	return &State{
		JobID:  uuid.NewString(),
		Config: cfg,
		Runner: cr,
	}
}

// findProductXML locates the MTD*.xml metadata document of a SAFE product.
func findProductXML(productDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(productDir, "MTD*.xml"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no MTD*.xml metadata found in %s", productDir)
	}
	return matches[0], nil
}
