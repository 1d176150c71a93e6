package manifest

import (
	"fmt"
	"strings"

	"blockforge/pkg/validation"
)

// ValidateCapabilities checks the output raster contract against the input
// one: the Upgrade marker may only appear on outputs, and every concrete
// output field must be at least as good as the corresponding input field.
// Resolution must be finer or equal, bands a superset, dtype no narrower.
func (m *Manifest) ValidateCapabilities() *validation.Result {
	result := validation.NewResult()

	if in := m.InputCapabilities.Raster; in != nil {
		for field, upgraded := range map[string]bool{
			"input_capabilities.raster.format":           in.Format.Upgraded,
			"input_capabilities.raster.sensor":           in.Sensor.Upgraded,
			"input_capabilities.raster.resolution":       in.Resolution.Upgraded,
			"input_capabilities.raster.dtype":            in.DType.Upgraded,
			"input_capabilities.raster.processing_level": in.ProcessingLevel.Upgraded,
		} {
			if upgraded {
				result.AddError(validation.Error{
					Code:    "UPGRADE_MARKER_ON_INPUT",
					Field:   field,
					Message: "the upgrade marker describes outputs and cannot appear on an input capability",
				})
			}
		}
		if in.Bands.Upgraded {
			result.AddError(validation.Error{
				Code:    "UPGRADE_MARKER_ON_INPUT",
				Field:   "input_capabilities.raster.bands",
				Message: "the upgrade marker describes outputs and cannot appear on an input capability",
			})
		}
	}

	in := m.InputCapabilities.Raster
	out := m.OutputCapabilities.Raster
	if in == nil || out == nil {
		return result
	}

	compareResolution(in, out, result)
	compareDType(in, out, result)
	compareBands(in, out, result)
	compareSensor(in, out, result)

	return result
}

func compareResolution(in, out *RasterCapability, result *validation.Result) {
	if out.Resolution.Upgraded || out.Resolution.IsZero() || in.Resolution.IsZero() {
		return
	}
	if !out.Resolution.IsNum || !in.Resolution.IsNum {
		return
	}
	if out.Resolution.Num > in.Resolution.Num {
		result.AddError(validation.Error{
			Code:  "RESOLUTION_DOWNGRADE",
			Field: "output_capabilities.raster.resolution",
			Message: fmt.Sprintf("output resolution %s is coarser than input resolution %s",
				out.Resolution.String(), in.Resolution.String()),
		})
	}
}

func compareDType(in, out *RasterCapability, result *validation.Result) {
	if out.DType.Upgraded || out.DType.IsZero() || in.DType.IsZero() {
		return
	}
	inRank, inKnown := dtypeRank[strings.ToLower(in.DType.Value)]
	outRank, outKnown := dtypeRank[strings.ToLower(out.DType.Value)]
	if !inKnown || !outKnown {
		result.AddWarning(validation.Warning{
			Code:    "DTYPE_UNKNOWN",
			Field:   "output_capabilities.raster.dtype",
			Message: fmt.Sprintf("cannot compare dtypes %q and %q", in.DType.Value, out.DType.Value),
		})
		return
	}
	if outRank < inRank {
		result.AddError(validation.Error{
			Code:  "DTYPE_DOWNGRADE",
			Field: "output_capabilities.raster.dtype",
			Message: fmt.Sprintf("output dtype %q is narrower than input dtype %q",
				out.DType.Value, in.DType.Value),
		})
	}
}

func compareBands(in, out *RasterCapability, result *validation.Result) {
	if out.Bands.Upgraded || out.Bands.IsZero() || in.Bands.IsZero() {
		return
	}
	have := make(map[string]bool, len(out.Bands.Bands))
	for _, b := range out.Bands.Bands {
		have[b] = true
	}
	var missing []string
	for _, b := range in.Bands.Bands {
		if !have[b] {
			missing = append(missing, b)
		}
	}
	if len(missing) > 0 {
		result.AddError(validation.Error{
			Code:  "BANDS_NOT_SUPERSET",
			Field: "output_capabilities.raster.bands",
			Message: fmt.Sprintf("output bands drop input bands %s",
				strings.Join(missing, ", ")),
		})
	}
}

func compareSensor(in, out *RasterCapability, result *validation.Result) {
	if out.Sensor.Upgraded || out.Sensor.IsZero() || in.Sensor.IsZero() {
		return
	}
	if out.Sensor.Value != in.Sensor.Value {
		result.AddError(validation.Error{
			Code:  "SENSOR_MISMATCH",
			Field: "output_capabilities.raster.sensor",
			Message: fmt.Sprintf("a processing block cannot change the sensor (%q -> %q)",
				in.Sensor.Value, out.Sensor.Value),
		})
	}
}
