package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/paulmach/orb"

	"blockforge/pkg/geo"
	"blockforge/pkg/metadata"
	"blockforge/pkg/params"
	"blockforge/pkg/raster"
)

// ErrSkip signals that a job has nothing to do for this input. The runner
// treats it as a clean stop, not a failure.
var ErrSkip = errors.New("nothing to process")

// Stage is one step of a job.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *State) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, state *State) error
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Run(ctx context.Context, state *State) error {
	return s.Fn(ctx, state)
}

// Stages returns the job steps in execution order.
func Stages() []Stage {
	return []Stage{
		StageFunc{"load_params", loadParams},
		StageFunc{"load_metadata", loadMetadata},
		StageFunc{"describe_scenes", describeScenes},
		StageFunc{"resolve_windows", resolveWindows},
		StageFunc{"plan_bands", planBands},
		StageFunc{"plan_profiles", planProfiles},
		StageFunc{"infer", infer},
		StageFunc{"write_metadata", writeMetadata},
	}
}

func loadParams(_ context.Context, state *State) error {
	var p params.Params
	var err error
	if state.Config.ParamsFile != "" {
		p, err = params.FromFile(state.Config.ParamsFile, state.Manifest)
	} else {
		p, err = params.FromEnv(state.Manifest)
	}
	if err != nil {
		return err
	}

	aoi, err := p.AOI()
	if err != nil {
		return err
	}
	state.Params = p
	state.AOI = aoi
	return nil
}

func loadMetadata(_ context.Context, state *State) error {
	fc, err := metadata.Load(state.Config.InputDir)
	if err != nil {
		return err
	}
	state.Input = fc
	return nil
}

func describeScenes(ctx context.Context, state *State) error {
	for _, f := range state.Input.Features {
		safePath, err := metadata.ScenePath(f)
		if err != nil {
			return err
		}
		productDir := filepath.Join(state.Config.InputDir, safePath)
		productXML, err := findProductXML(productDir)
		if err != nil {
			return err
		}

		subs, err := raster.Subdatasets(ctx, state.Runner, productXML)
		if err != nil {
			return err
		}

		sc := &Scene{
			SafePath:   safePath,
			ProductXML: productXML,
			OutputName: metadata.OutputName(safePath),
		}
		if sc.Data10, err = raster.Describe(ctx, state.Runner, subs[raster.Res10m]); err != nil {
			return err
		}
		if sc.Data20, err = raster.Describe(ctx, state.Runner, subs[raster.Res20m]); err != nil {
			return err
		}
		if sc.Data60, err = raster.Describe(ctx, state.Runner, subs[raster.Res60m]); err != nil {
			return err
		}
		state.Scenes = append(state.Scenes, sc)
	}
	return nil
}

// resolveWindows turns the job's spatial filter into nested pixel windows
// on the 10, 20 and 60 m grids of each scene.
func resolveWindows(_ context.Context, state *State) error {
	for _, sc := range state.Scenes {
		win, err := sceneWindow(state.AOI, sc.Data10)
		if err != nil {
			// a filter that misses the scene entirely leaves nothing
			// to process, which is not a failure
			return fmt.Errorf("%w: scene %s: %v", ErrSkip, sc.SafePath, err)
		}
		sc.Win10 = win
		sc.Win20 = win.Divide(2)
		sc.Win60 = win.Divide(6)
	}
	return nil
}

func sceneWindow(aoi params.AOI, d raster.Dataset) (geo.Window, error) {
	switch aoi.Kind {
	case params.AOINone:
		return geo.FullScene(d.Width, d.Height)
	case params.AOIPixel:
		p := aoi.Pixel
		return geo.Snap60(p[0], p[1], p[2], p[3], d.Width, d.Height)
	case params.AOILonLat:
		ll := aoi.LonLat
		return geo.WindowFromLonLat(d.Transform, ll[0], ll[1], ll[2], ll[3], d.Width, d.Height)
	default:
		return geo.WindowFromBound(d.Transform, aoi.Bound, d.Width, d.Height)
	}
}

func planBands(_ context.Context, state *State) error {
	for _, sc := range state.Scenes {
		sc.Plan = raster.BandPlan{
			B10: raster.SelectBands(sc.Data10.Descriptions),
			B20: raster.SelectBands(sc.Data20.Descriptions),
			B60: raster.SelectBands(sc.Data60.Descriptions),
		}
		if err := sc.Plan.Validate(); err != nil {
			return fmt.Errorf("%w: scene %s: %v", ErrSkip, sc.SafePath, err)
		}
	}
	return nil
}

func planProfiles(_ context.Context, state *State) error {
	for _, sc := range state.Scenes {
		in := raster.Profile{Transform: sc.Data10.Transform, CRS: sc.Data10.CRS}
		sc.Profile = raster.OutputProfile(in, sc.Win10, sc.Plan, state.Params.CopyOriginalBands)
	}
	return nil
}

func infer(ctx context.Context, state *State) error {
	planPath, err := WritePlan(state)
	if err != nil {
		return err
	}

	cmd := append([]string{}, state.Config.Inference.Command...)
	cmd = append(cmd, planPath)

	runCtx := ctx
	if timeout := state.Config.Inference.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := state.Runner.RunCommand(runCtx, cmd...)
	if err != nil {
		return fmt.Errorf("inference failed: %w\n%s", err, out)
	}
	return nil
}

func writeMetadata(_ context.Context, state *State) error {
	var clip orb.Geometry
	if state.Params.ClipToAOI {
		clip = state.AOI.ClipGeometry()
	}
	out, err := metadata.BuildOutput(state.Input, clip)
	if err != nil {
		return err
	}
	return metadata.Write(state.Config.OutputDir, out)
}
