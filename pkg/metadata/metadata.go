// Package metadata reads and writes the GeoJSON job metadata (data.json)
// the platform passes between blocks.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	// FileName is the metadata document name inside the job directories.
	FileName = "data.json"

	// ScenePathProperty names the feature property holding the SAFE
	// product directory of the source scene, relative to the input dir.
	ScenePathProperty = "sentinel2.l1c.safe_path"

	// OutputProperty names the feature property this block adds, holding
	// the produced GTiff relative to the output dir.
	OutputProperty = "custom.processing.superresolution"

	outputSuffix = "_superresolution.tif"
)

// Load reads a feature collection from a job directory.
func Load(dir string) (*geojson.FeatureCollection, error) {
	path := filepath.Join(dir, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job metadata %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing job metadata %s: %w", path, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("job metadata %s contains no features", path)
	}
	return fc, nil
}

// Write stores a feature collection into a job directory, creating the
// directory if needed.
func Write(dir string, fc *geojson.FeatureCollection) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	raw, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling job metadata: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing job metadata %s: %w", path, err)
	}
	return nil
}

// ScenePath extracts the SAFE product path from a feature.
func ScenePath(f *geojson.Feature) (string, error) {
	v, ok := f.Properties[ScenePathProperty]
	if !ok {
		return "", fmt.Errorf("feature has no %q property", ScenePathProperty)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("feature property %q is not a usable path", ScenePathProperty)
	}
	return s, nil
}

// OutputName derives the output image name from the scene path:
// the product stem with a _superresolution.tif suffix.
func OutputName(scenePath string) string {
	stem := filepath.Base(filepath.Clean(scenePath))
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	return stem + outputSuffix
}

// BuildOutput copies the input collection and annotates each feature with
// the produced image path. A non-nil clip geometry replaces each feature's
// footprint, for outputs clipped to an area of interest.
func BuildOutput(in *geojson.FeatureCollection, clip orb.Geometry) (*geojson.FeatureCollection, error) {
	out := geojson.NewFeatureCollection()
	for _, f := range in.Features {
		scene, err := ScenePath(f)
		if err != nil {
			return nil, err
		}
		copied := geojson.NewFeature(f.Geometry)
		copied.ID = f.ID
		copied.Properties = f.Properties.Clone()
		copied.Properties[OutputProperty] = OutputName(scene)
		if clip != nil {
			copied.Geometry = clip
			copied.BBox = geojson.NewBBox(clip.Bound())
		}
		out.Append(copied)
	}
	return out, nil
}
