package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capManifest(t *testing.T, in, out string) *Manifest {
	t.Helper()
	doc := `{
  "block_schema_version": 2,
  "name": "s2-superresolution",
  "type": "processing",
  "machine": {"type": "gpu_nvidia_tesla_k80"},
  "input_capabilities": {"raster": ` + in + `},
  "output_capabilities": {"raster": ` + out + `}
}`
	m, err := Parse([]byte(doc))
	require.NoError(t, err)
	return m
}

func TestValidateCapabilitiesUpgrades(t *testing.T) {
	tests := []struct {
		name     string
		in, out  string
		wantCode string // empty means valid
	}{
		{
			name: "markers pass through",
			in:   `{"resolution": 10, "dtype": "uint16", "bands": ["B2","B3"], "sensor": "sentinel2"}`,
			out:  `{"resolution": ">", "dtype": ">", "bands": ">", "sensor": ">"}`,
		},
		{
			name: "concrete upgrade is fine",
			in:   `{"resolution": 20, "dtype": "uint16", "bands": ["B2","B3"]}`,
			out:  `{"resolution": 10, "dtype": "float32", "bands": ["B2","B3","B8A"]}`,
		},
		{
			name:     "coarser output resolution",
			in:       `{"resolution": 10}`,
			out:      `{"resolution": 60}`,
			wantCode: "RESOLUTION_DOWNGRADE",
		},
		{
			name:     "narrower output dtype",
			in:       `{"dtype": "float32"}`,
			out:      `{"dtype": "uint8"}`,
			wantCode: "DTYPE_DOWNGRADE",
		},
		{
			name:     "dropped bands",
			in:       `{"bands": ["B2","B3","B4"]}`,
			out:      `{"bands": ["B2"]}`,
			wantCode: "BANDS_NOT_SUPERSET",
		},
		{
			name:     "sensor swap",
			in:       `{"sensor": "sentinel2"}`,
			out:      `{"sensor": "landsat8"}`,
			wantCode: "SENSOR_MISMATCH",
		},
		{
			name:     "marker on input",
			in:       `{"resolution": ">"}`,
			out:      `{"resolution": 10}`,
			wantCode: "UPGRADE_MARKER_ON_INPUT",
		},
		{
			name:     "band marker on input",
			in:       `{"bands": ">"}`,
			out:      `{"bands": ">"}`,
			wantCode: "UPGRADE_MARKER_ON_INPUT",
		},
		{
			name: "absent fields are not compared",
			in:   `{"format": "SAFE"}`,
			out:  `{"dtype": "float32"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := capManifest(t, tt.in, tt.out)
			result := m.ValidateCapabilities()

			if tt.wantCode == "" {
				assert.True(t, result.Valid, result.Summary())
				return
			}
			require.False(t, result.Valid)
			codes := make([]string, 0, len(result.Errors))
			for _, e := range result.Errors {
				codes = append(codes, e.Code)
			}
			assert.Contains(t, codes, tt.wantCode)
		})
	}
}

func TestValidateCapabilitiesUnknownDType(t *testing.T) {
	m := capManifest(t, `{"dtype": "uint16"}`, `{"dtype": "complex64"}`)
	result := m.ValidateCapabilities()
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "DTYPE_UNKNOWN", result.Warnings[0].Code)
}

func TestValidateCapabilitiesNoRaster(t *testing.T) {
	m := &Manifest{}
	result := m.ValidateCapabilities()
	assert.True(t, result.Valid)
}
