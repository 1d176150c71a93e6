package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"blockforge/pkg/manifest"
	"blockforge/pkg/validation"
)

// Linter checks a rendered Dockerfile against block packaging rules.
type Linter struct {
	logger zerolog.Logger
}

func NewLinter(logger zerolog.Logger) *Linter {
	return &Linter{
		logger: logger.With().Str("component", "dockerfile_linter").Logger(),
	}
}

var knownInstructions = map[string]bool{
	"FROM": true, "RUN": true, "CMD": true, "LABEL": true, "EXPOSE": true,
	"ENV": true, "ADD": true, "COPY": true, "ENTRYPOINT": true, "VOLUME": true,
	"USER": true, "WORKDIR": true, "ARG": true, "ONBUILD": true,
	"STOPSIGNAL": true, "HEALTHCHECK": true, "SHELL": true,
}

type instruction struct {
	name string
	text string
	line int
}

// Lint validates the Dockerfile content for the machine it will run on.
func (l *Linter) Lint(content string, m manifest.Machine) *validation.Result {
	result := validation.NewResult()

	l.logger.Debug().Msg("starting Dockerfile lint")

	if strings.TrimSpace(content) == "" {
		result.AddError(validation.Error{
			Code:    "DOCKERFILE_EMPTY",
			Message: "Dockerfile is empty",
		})
		return result
	}

	instructions := parseInstructions(content)
	result.Context["instruction_count"] = strconv.Itoa(len(instructions))

	for _, ins := range instructions {
		l.lintInstruction(ins, result)
	}
	l.lintStructure(instructions, m, result)

	l.logger.Debug().
		Bool("valid", result.Valid).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Msg("Dockerfile lint completed")

	return result
}

// parseInstructions splits the content into logical instructions,
// folding backslash continuations into a single line.
func parseInstructions(content string) []instruction {
	var out []instruction
	var current strings.Builder
	var startLine int
	var name string

	flush := func() {
		if current.Len() == 0 {
			return
		}
		out = append(out, instruction{name: name, text: current.String(), line: startLine})
		current.Reset()
		name = ""
		startLine = 0
	}

	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if current.Len() > 0 {
			current.WriteString(" ")
			if strings.HasSuffix(trimmed, "\\") {
				current.WriteString(strings.TrimSuffix(trimmed, "\\"))
				continue
			}
			current.WriteString(trimmed)
			flush()
			continue
		}

		fields := strings.Fields(trimmed)
		name = strings.ToUpper(fields[0])
		startLine = i + 1
		if strings.HasSuffix(trimmed, "\\") {
			current.WriteString(strings.TrimSuffix(trimmed, "\\"))
			continue
		}
		current.WriteString(trimmed)
		flush()
	}
	flush()
	return out
}

func (l *Linter) lintInstruction(ins instruction, result *validation.Result) {
	fields := strings.Fields(ins.text)

	if !knownInstructions[ins.name] {
		result.AddError(validation.Error{
			Code:    "INSTRUCTION_UNKNOWN",
			Line:    ins.line,
			Message: fmt.Sprintf("unknown instruction %q", ins.name),
		})
		return
	}

	switch ins.name {
	case "FROM":
		if len(fields) < 2 {
			result.AddError(validation.Error{
				Code:    "FROM_MISSING_IMAGE",
				Line:    ins.line,
				Message: "FROM requires an image name",
			})
			return
		}
		image := fields[1]
		if strings.HasSuffix(image, ":latest") || !strings.Contains(image, ":") {
			result.AddError(validation.Error{
				Code:    "FROM_UNPINNED",
				Line:    ins.line,
				Message: fmt.Sprintf("base image %q must carry a version tag", image),
			})
		}
	case "RUN":
		if strings.Contains(ins.text, "apt-get install") &&
			!strings.Contains(ins.text, "rm -rf /var/lib/apt/lists/*") {
			result.AddWarning(validation.Warning{
				Code:       "APT_CACHE_KEPT",
				Line:       ins.line,
				Message:    "apt-get install leaves the package cache in the image",
				Suggestion: "append && rm -rf /var/lib/apt/lists/* to the RUN",
			})
		}
	case "COPY", "ADD":
		if len(fields) < 3 {
			result.AddError(validation.Error{
				Code:    "COPY_MISSING_ARGS",
				Line:    ins.line,
				Message: fmt.Sprintf("%s requires a source and a destination", ins.name),
			})
		}
	case "CMD", "ENTRYPOINT":
		if len(fields) < 2 {
			result.AddError(validation.Error{
				Code:    "CMD_MISSING_COMMAND",
				Line:    ins.line,
				Message: fmt.Sprintf("%s requires a command", ins.name),
			})
		}
	case "WORKDIR":
		if len(fields) >= 2 && !strings.HasPrefix(fields[1], "/") {
			result.AddWarning(validation.Warning{
				Code:       "WORKDIR_RELATIVE",
				Line:       ins.line,
				Message:    "WORKDIR should be an absolute path",
				Suggestion: "use a path starting with /",
			})
		}
	}
}

func (l *Linter) lintStructure(instructions []instruction, m manifest.Machine, result *validation.Result) {
	if len(instructions) == 0 {
		result.AddError(validation.Error{
			Code:    "DOCKERFILE_EMPTY",
			Message: "Dockerfile contains no instructions",
		})
		return
	}

	if instructions[0].name != "FROM" {
		result.AddError(validation.Error{
			Code:    "FROM_NOT_FIRST",
			Line:    instructions[0].line,
			Message: "Dockerfile must start with FROM",
		})
	}

	var cmds, entrypoints int
	var hasManifestArg, hasManifestLabel bool
	baseImage := ""
	for _, ins := range instructions {
		switch ins.name {
		case "CMD":
			cmds++
		case "ENTRYPOINT":
			entrypoints++
		case "FROM":
			if fields := strings.Fields(ins.text); len(fields) >= 2 && baseImage == "" {
				baseImage = fields[1]
			}
		case "ARG":
			if fields := strings.Fields(ins.text); len(fields) >= 2 &&
				strings.SplitN(fields[1], "=", 2)[0] == ManifestBuildArg {
				hasManifestArg = true
			}
		case "LABEL":
			if strings.Contains(ins.text, ManifestLabel) {
				hasManifestLabel = true
			}
		}
	}

	if cmds > 1 {
		result.AddError(validation.Error{
			Code:    "CMD_DUPLICATE",
			Message: "multiple CMD instructions, only the last one takes effect",
		})
	}
	if entrypoints > 1 {
		result.AddError(validation.Error{
			Code:    "ENTRYPOINT_DUPLICATE",
			Message: "multiple ENTRYPOINT instructions, only the last one takes effect",
		})
	}
	if cmds == 0 && entrypoints == 0 {
		result.AddError(validation.Error{
			Code:    "NO_COMMAND",
			Message: "block image needs a CMD or ENTRYPOINT to run the job",
		})
	}

	if !hasManifestArg {
		result.AddError(validation.Error{
			Code:    "MANIFEST_ARG_MISSING",
			Message: fmt.Sprintf("missing ARG %s for the manifest build argument", ManifestBuildArg),
		})
	}
	if !hasManifestLabel {
		result.AddError(validation.Error{
			Code:    "MANIFEST_LABEL_MISSING",
			Message: fmt.Sprintf("missing LABEL %q carrying the manifest", ManifestLabel),
		})
	}

	if m.IsGPU() && baseImage != "" &&
		!strings.Contains(baseImage, "gpu") && !strings.Contains(baseImage, "cuda") {
		result.AddWarning(validation.Warning{
			Code:       "GPU_BASE_MISMATCH",
			Message:    fmt.Sprintf("machine type %s is a GPU type but base image %q has no GPU support", m.Type, baseImage),
			Suggestion: "use a gpu or cuda flavored base image",
		})
	}
}
