package manifest

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"

	"k8s.io/apimachinery/pkg/api/resource"

	"blockforge/pkg/validation"
)

var nameRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Validate checks the manifest document itself: schema version, naming,
// machine request, and parameter declarations. Capability contracts are
// checked separately by ValidateCapabilities.
func (m *Manifest) Validate() *validation.Result {
	result := validation.NewResult()

	if m.SchemaVersion != SupportedSchemaVersion {
		result.AddError(validation.Error{
			Code:    "SCHEMA_VERSION_UNSUPPORTED",
			Field:   "block_schema_version",
			Message: fmt.Sprintf("schema version %d not supported (want %d)", m.SchemaVersion, SupportedSchemaVersion),
		})
	}

	if m.Name == "" {
		result.AddError(validation.Error{
			Code:    "NAME_MISSING",
			Field:   "name",
			Message: "manifest requires a name",
		})
	} else if !nameRe.MatchString(m.Name) {
		result.AddError(validation.Error{
			Code:    "NAME_INVALID",
			Field:   "name",
			Message: fmt.Sprintf("name %q must be a lowercase slug", m.Name),
		})
	}

	if m.Type != TypeProcessing && m.Type != TypeData {
		result.AddError(validation.Error{
			Code:    "TYPE_UNKNOWN",
			Field:   "type",
			Message: fmt.Sprintf("block type %q is not one of %q or %q", m.Type, TypeProcessing, TypeData),
		})
	}

	m.validateMachine(result)
	m.validateParameters(result)

	if m.Type == TypeProcessing && m.InputCapabilities.Raster == nil {
		result.AddWarning(validation.Warning{
			Code:       "NO_INPUT_CAPABILITY",
			Field:      "input_capabilities",
			Message:    "processing block declares no raster input capability",
			Suggestion: "declare the expected sensor, format and bands so the platform can match upstream blocks",
		})
	}

	return result
}

func (m *Manifest) validateMachine(result *validation.Result) {
	if m.Machine.Type == "" {
		result.AddError(validation.Error{
			Code:    "MACHINE_TYPE_MISSING",
			Field:   "machine.type",
			Message: "manifest requires a machine type",
		})
	} else if !slices.Contains(MachineTypes, m.Machine.Type) {
		result.AddError(validation.Error{
			Code:    "MACHINE_TYPE_UNKNOWN",
			Field:   "machine.type",
			Message: fmt.Sprintf("machine type %q is not offered by the platform", m.Machine.Type),
		})
	}

	for field, qty := range map[string]string{
		"machine.min_memory": m.Machine.MinMemory,
		"machine.min_cpu":    m.Machine.MinCPU,
	} {
		if qty == "" {
			continue
		}
		if _, err := resource.ParseQuantity(qty); err != nil {
			result.AddError(validation.Error{
				Code:    "MACHINE_QUANTITY_INVALID",
				Field:   field,
				Message: fmt.Sprintf("%q is not a valid resource quantity: %v", qty, err),
			})
		}
	}
}

func (m *Manifest) validateParameters(result *validation.Result) {
	knownTypes := []string{ParamArray, ParamGeometry, ParamBoolean, ParamString, ParamNumber, ParamInteger}

	for name, spec := range m.Parameters {
		field := "parameters." + name
		if !slices.Contains(knownTypes, spec.Type) {
			result.AddError(validation.Error{
				Code:    "PARAM_TYPE_UNKNOWN",
				Field:   field,
				Message: fmt.Sprintf("parameter type %q is not supported", spec.Type),
			})
			continue
		}
		if len(spec.Default) == 0 {
			continue
		}
		if err := checkDefault(spec.Type, spec.Default); err != nil {
			result.AddError(validation.Error{
				Code:    "PARAM_DEFAULT_MISMATCH",
				Field:   field,
				Message: err.Error(),
			})
		}
	}
}

// checkDefault type-checks a declared default against its parameter type.
// Null defaults are always accepted; they mean "unset".
func checkDefault(paramType string, raw json.RawMessage) error {
	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("default is not valid JSON: %v", err)
	}
	if probe == nil {
		return nil
	}

	ok := false
	switch paramType {
	case ParamBoolean:
		_, ok = probe.(bool)
	case ParamString:
		_, ok = probe.(string)
	case ParamNumber:
		_, ok = probe.(float64)
	case ParamInteger:
		if n, isNum := probe.(float64); isNum {
			ok = n == float64(int64(n))
		}
	case ParamArray:
		_, ok = probe.([]interface{})
	case ParamGeometry:
		_, ok = probe.(map[string]interface{})
	}
	if !ok {
		return fmt.Errorf("default %s does not match declared type %q", string(raw), paramType)
	}
	return nil
}

// ParameterDefaults returns the declared non-null defaults, keyed by
// parameter name, for materialization into a job parameter set.
func (m *Manifest) ParameterDefaults() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	for name, spec := range m.Parameters {
		if len(spec.Default) == 0 || string(spec.Default) == "null" {
			continue
		}
		out[name] = spec.Default
	}
	return out
}
