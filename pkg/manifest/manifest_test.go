package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  "block_schema_version": 2,
  "name": "s2-superresolution",
  "type": "processing",
  "display_name": "Sentinel-2 Super-resolution",
  "description": "Super-resolves the 20m and 60m bands of a Sentinel-2 L1C scene to 10m.",
  "tags": ["imagery", "machine learning", "super-resolution"],
  "parameters": {
    "bbox": {"type": "array", "default": null},
    "intersects": {"type": "geometry", "default": null},
    "contains": {"type": "geometry", "default": null},
    "copy_original_bands": {"type": "boolean", "default": true},
    "clip_to_aoi": {"type": "boolean", "default": false}
  },
  "machine": {"type": "gpu_nvidia_tesla_k80", "min_memory": "13Gi"},
  "input_capabilities": {
    "raster": {
      "format": "SAFE",
      "sensor": "sentinel2",
      "resolution": 10,
      "dtype": "uint16",
      "processing_level": "l1c",
      "bands": ["B2", "B3", "B4", "B8"]
    }
  },
  "output_capabilities": {
    "raster": {
      "format": "GTiff",
      "sensor": ">",
      "resolution": 10,
      "dtype": "float32",
      "processing_level": ">",
      "bands": ">"
    }
  }
}`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, 2, m.SchemaVersion)
	assert.Equal(t, "s2-superresolution", m.Name)
	assert.Equal(t, TypeProcessing, m.Type)
	assert.Equal(t, "gpu_nvidia_tesla_k80", m.Machine.Type)
	assert.True(t, m.Machine.IsGPU())

	require.NotNil(t, m.InputCapabilities.Raster)
	in := m.InputCapabilities.Raster
	assert.Equal(t, "SAFE", in.Format.Value)
	assert.True(t, in.Resolution.IsNum)
	assert.Equal(t, 10.0, in.Resolution.Num)
	assert.Equal(t, []string{"B2", "B3", "B4", "B8"}, in.Bands.Bands)

	require.NotNil(t, m.OutputCapabilities.Raster)
	out := m.OutputCapabilities.Raster
	assert.True(t, out.Sensor.Upgraded)
	assert.True(t, out.Bands.Upgraded)
	assert.Equal(t, "GTiff", out.Format.Value)
}

func TestParseYAML(t *testing.T) {
	doc := `
block_schema_version: 2
name: s2-superresolution
type: processing
machine:
  type: gpu_nvidia_tesla_k80
output_capabilities:
  raster:
    bands: ">"
    resolution: 10
`
	m, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "s2-superresolution", m.Name)
	assert.True(t, m.OutputCapabilities.Raster.Bands.Upgraded)
	assert.Equal(t, 10.0, m.OutputCapabilities.Raster.Resolution.Num)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s2-superresolution", m.Name)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestJSONRoundtrip(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	doc, err := m.JSON()
	require.NoError(t, err)

	back, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, m, back)
}

func TestValidateSample(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	result := m.Validate()
	assert.True(t, result.Valid, result.Summary())
	assert.Empty(t, result.Errors)
}

func TestValidateFindings(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m *Manifest)
		wantCode string
	}{
		{
			name:     "unsupported schema version",
			mutate:   func(m *Manifest) { m.SchemaVersion = 1 },
			wantCode: "SCHEMA_VERSION_UNSUPPORTED",
		},
		{
			name:     "missing name",
			mutate:   func(m *Manifest) { m.Name = "" },
			wantCode: "NAME_MISSING",
		},
		{
			name:     "uppercase name",
			mutate:   func(m *Manifest) { m.Name = "S2_SuperRes" },
			wantCode: "NAME_INVALID",
		},
		{
			name:     "unknown block type",
			mutate:   func(m *Manifest) { m.Type = "webhook" },
			wantCode: "TYPE_UNKNOWN",
		},
		{
			name:     "unknown machine type",
			mutate:   func(m *Manifest) { m.Machine.Type = "gpu_quantum" },
			wantCode: "MACHINE_TYPE_UNKNOWN",
		},
		{
			name:     "missing machine type",
			mutate:   func(m *Manifest) { m.Machine.Type = "" },
			wantCode: "MACHINE_TYPE_MISSING",
		},
		{
			name:     "bad memory quantity",
			mutate:   func(m *Manifest) { m.Machine.MinMemory = "13 gigs" },
			wantCode: "MACHINE_QUANTITY_INVALID",
		},
		{
			name: "unknown parameter type",
			mutate: func(m *Manifest) {
				m.Parameters["weird"] = ParameterSpec{Type: "tensor"}
			},
			wantCode: "PARAM_TYPE_UNKNOWN",
		},
		{
			name: "default does not match type",
			mutate: func(m *Manifest) {
				m.Parameters["clip_to_aoi"] = ParameterSpec{Type: ParamBoolean, Default: []byte(`"yes"`)}
			},
			wantCode: "PARAM_DEFAULT_MISMATCH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(sampleManifest))
			require.NoError(t, err)
			tt.mutate(m)

			result := m.Validate()
			require.False(t, result.Valid)

			codes := make([]string, 0, len(result.Errors))
			for _, e := range result.Errors {
				codes = append(codes, e.Code)
			}
			assert.Contains(t, codes, tt.wantCode)
		})
	}
}

func TestParameterDefaults(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	defaults := m.ParameterDefaults()
	assert.Equal(t, "true", string(defaults["copy_original_bands"]))
	assert.Equal(t, "false", string(defaults["clip_to_aoi"]))
	// null defaults are not materialized
	assert.NotContains(t, defaults, "bbox")
	assert.NotContains(t, defaults, "intersects")
}
