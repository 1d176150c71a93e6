package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"blockforge/pkg/geo"
	"blockforge/pkg/raster"
)

// PlanFileName is the job plan document handed to the inference process.
const PlanFileName = "plan.json"

// DatasetPlan tells the inference process which subdataset to open, where
// to read, and which bands to take.
type DatasetPlan struct {
	Name    string   `json:"name"`
	Window  [4]int   `json:"window"` // min_x, min_y, max_x, max_y, inclusive
	Bands   []string `json:"bands"`
	Indices []int    `json:"indices"`
}

// ScenePlan is the per-scene section of the job plan.
type ScenePlan struct {
	Product   string                 `json:"product"`
	Output    string                 `json:"output"`
	Datasets  map[string]DatasetPlan `json:"datasets"` // keyed by resolution
	Profile   raster.Profile         `json:"profile"`
	BandOrder []string               `json:"band_order"`
}

// Plan is the full document the runner writes for the inference process.
type Plan struct {
	JobID             string      `json:"job_id"`
	OutputDir         string      `json:"output_dir"`
	CopyOriginalBands bool        `json:"copy_original_bands"`
	ClipToAOI         bool        `json:"clip_to_aoi"`
	Scenes            []ScenePlan `json:"scenes"`
}

func windowArray(w geo.Window) [4]int {
	return [4]int{w.MinX, w.MinY, w.MaxX, w.MaxY}
}

func datasetPlan(d raster.Dataset, w geo.Window, sel raster.Selection) DatasetPlan {
	return DatasetPlan{
		Name:    d.Name,
		Window:  windowArray(w),
		Bands:   sel.Bands,
		Indices: sel.Indices,
	}
}

// BuildPlan assembles the job plan from the state the stages resolved.
func BuildPlan(state *State) Plan {
	plan := Plan{
		JobID:             state.JobID,
		OutputDir:         state.Config.OutputDir,
		CopyOriginalBands: state.Params.CopyOriginalBands,
		ClipToAOI:         state.Params.ClipToAOI,
	}
	for _, sc := range state.Scenes {
		order := sc.Plan.SuperResolved()
		if state.Params.CopyOriginalBands {
			order = append(order, sc.Plan.B10.Bands...)
		}
		plan.Scenes = append(plan.Scenes, ScenePlan{
			Product:   sc.ProductXML,
			Output:    sc.OutputName,
			Profile:   sc.Profile,
			BandOrder: order,
			Datasets: map[string]DatasetPlan{
				raster.Res10m: datasetPlan(sc.Data10, sc.Win10, sc.Plan.B10),
				raster.Res20m: datasetPlan(sc.Data20, sc.Win20, sc.Plan.B20),
				raster.Res60m: datasetPlan(sc.Data60, sc.Win60, sc.Plan.B60),
			},
		})
	}
	return plan
}

// WritePlan stores the job plan in the output directory and returns its
// path.
func WritePlan(state *State) (string, error) {
	if err := os.MkdirAll(state.Config.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	plan := BuildPlan(state)
	raw, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling job plan: %w", err)
	}

	path := filepath.Join(state.Config.OutputDir, PlanFileName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing job plan %s: %w", path, err)
	}
	return path, nil
}
