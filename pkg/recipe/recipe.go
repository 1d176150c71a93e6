// Package recipe turns a build recipe and a block manifest into a
// Dockerfile, lints the result, and drives the image build.
package recipe

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"blockforge/pkg/manifest"
)

const (
	// ManifestBuildArg is the build argument carrying the manifest JSON.
	ManifestBuildArg = "manifest"

	// ManifestLabel is the image label the platform reads the manifest from.
	ManifestLabel = "block_manifest"
)

const (
	cpuBaseImage = "tensorflow/tensorflow:1.15.5-py3"
	gpuBaseImage = "tensorflow/tensorflow:1.15.5-gpu-py3"
)

// Recipe describes how a block image is assembled.
type Recipe struct {
	// BaseImage overrides the machine-derived default when set.
	BaseImage string `json:"base_image,omitempty"`

	AptPackages []string `json:"apt_packages,omitempty"`
	PipPackages []string `json:"pip_packages,omitempty"`

	// Weights are model files copied into the image next to the source.
	Weights []string `json:"weights,omitempty"`

	// Source is the directory copied into the image, relative to the
	// build context. Defaults to src.
	Source string `json:"source,omitempty"`

	Workdir    string   `json:"workdir,omitempty"`
	Entrypoint []string `json:"entrypoint,omitempty"`
}

// Load reads a recipe from a YAML or JSON file.
func Load(path string) (*Recipe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes recipe content and applies defaults.
func Parse(raw []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.UnmarshalStrict(raw, &r); err != nil {
		return nil, fmt.Errorf("parsing recipe: %w", err)
	}
	r.applyDefaults()
	return &r, nil
}

func (r *Recipe) applyDefaults() {
	if r.Source == "" {
		r.Source = "src"
	}
	if r.Workdir == "" {
		r.Workdir = "/block"
	}
	if len(r.Entrypoint) == 0 {
		r.Entrypoint = []string{"python3", "/block/src/run.py"}
	}
}

// BaseImageFor returns the image the recipe builds on. GPU machines get
// the GPU flavor unless the recipe pins its own base.
func (r *Recipe) BaseImageFor(m manifest.Machine) string {
	if r.BaseImage != "" {
		return r.BaseImage
	}
	if m.IsGPU() {
		return gpuBaseImage
	}
	return cpuBaseImage
}
