// Package manifest models the block manifest: the declarative descriptor a
// hosting imagery platform reads to learn a block's parameters, machine
// requirements, and raster capability contracts.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// SupportedSchemaVersion is the manifest schema this toolkit understands.
const SupportedSchemaVersion = 2

// Block types accepted by the platform.
const (
	TypeProcessing = "processing"
	TypeData       = "data"
)

// Manifest is the top-level block descriptor.
type Manifest struct {
	SchemaVersion      int                      `json:"block_schema_version"`
	Name               string                   `json:"name"`
	Type               string                   `json:"type"`
	DisplayName        string                   `json:"display_name,omitempty"`
	Description        string                   `json:"description,omitempty"`
	Tags               []string                 `json:"tags,omitempty"`
	Parameters         map[string]ParameterSpec `json:"parameters,omitempty"`
	Machine            Machine                  `json:"machine"`
	InputCapabilities  Capabilities             `json:"input_capabilities"`
	OutputCapabilities Capabilities             `json:"output_capabilities"`
}

// ParameterSpec declares one job parameter: its type and optional default.
type ParameterSpec struct {
	Type     string          `json:"type"`
	Default  json.RawMessage `json:"default,omitempty"`
	Required bool            `json:"required,omitempty"`
}

// Parameter types a manifest may declare.
const (
	ParamArray    = "array"
	ParamGeometry = "geometry"
	ParamBoolean  = "boolean"
	ParamString   = "string"
	ParamNumber   = "number"
	ParamInteger  = "integer"
)

// Machine is the resource request of the block.
type Machine struct {
	Type string `json:"type"`
	// Optional quantity strings, e.g. "13Gi" or "4".
	MinMemory string `json:"min_memory,omitempty"`
	MinCPU    string `json:"min_cpu,omitempty"`
}

// Machine classes known to the platform.
var MachineTypes = []string{
	"small", "medium", "large", "xlarge",
	"gpu_nvidia_tesla_k80", "gpu_nvidia_tesla_p4", "gpu_nvidia_tesla_v100",
}

// IsGPU reports whether the machine class carries a GPU.
func (m Machine) IsGPU() bool {
	return len(m.Type) > 4 && m.Type[:4] == "gpu_"
}

// Capabilities groups the capability contracts by data kind. Raster is the
// only kind this toolkit models.
type Capabilities struct {
	Raster *RasterCapability `json:"raster,omitempty"`
}

// Load reads a manifest from disk. Both JSON and YAML documents are
// accepted; YAML is converted through sigs.k8s.io/yaml.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest document.
func Parse(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshaling manifest: %w", err)
	}
	return &m, nil
}

// JSON renders the manifest as compact JSON, the form embedded into the
// container image label for provenance.
func (m *Manifest) JSON() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}
	return string(data), nil
}
