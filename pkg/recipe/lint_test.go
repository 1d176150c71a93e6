package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockforge/pkg/logger"
	"blockforge/pkg/validation"
)

func codes(errs []validation.Error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func warningCodes(warns []validation.Warning) []string {
	out := make([]string, len(warns))
	for i, w := range warns {
		out[i] = w.Code
	}
	return out
}

func TestLintGenerated(t *testing.T) {
	r, err := Parse([]byte(sampleRecipe))
	require.NoError(t, err)

	content, err := Generate(r, gpuMachine())
	require.NoError(t, err)

	result := NewLinter(logger.Component("test")).Lint(content, gpuMachine())
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestLintFindings(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
	}{
		{
			name:     "empty",
			content:  "   \n\n",
			wantCode: "DOCKERFILE_EMPTY",
		},
		{
			name:     "does not start with FROM",
			content:  "ARG manifest\nFROM x:1\nLABEL \"block_manifest\"=$manifest\nCMD [\"run\"]\n",
			wantCode: "FROM_NOT_FIRST",
		},
		{
			name:     "unpinned base",
			content:  "FROM tensorflow/tensorflow\nARG manifest\nLABEL \"block_manifest\"=$manifest\nCMD [\"run\"]\n",
			wantCode: "FROM_UNPINNED",
		},
		{
			name:     "latest tag",
			content:  "FROM x:latest\nARG manifest\nLABEL \"block_manifest\"=$manifest\nCMD [\"run\"]\n",
			wantCode: "FROM_UNPINNED",
		},
		{
			name:     "missing manifest arg",
			content:  "FROM x:1\nLABEL \"block_manifest\"=static\nCMD [\"run\"]\n",
			wantCode: "MANIFEST_ARG_MISSING",
		},
		{
			name:     "missing manifest label",
			content:  "FROM x:1\nARG manifest\nCMD [\"run\"]\n",
			wantCode: "MANIFEST_LABEL_MISSING",
		},
		{
			name:     "duplicate CMD",
			content:  "FROM x:1\nARG manifest\nLABEL \"block_manifest\"=$manifest\nCMD [\"a\"]\nCMD [\"b\"]\n",
			wantCode: "CMD_DUPLICATE",
		},
		{
			name:     "no command",
			content:  "FROM x:1\nARG manifest\nLABEL \"block_manifest\"=$manifest\n",
			wantCode: "NO_COMMAND",
		},
		{
			name:     "unknown instruction",
			content:  "FROM x:1\nARG manifest\nLABEL \"block_manifest\"=$manifest\nFETCH something\nCMD [\"run\"]\n",
			wantCode: "INSTRUCTION_UNKNOWN",
		},
		{
			name:     "copy without destination",
			content:  "FROM x:1\nARG manifest\nLABEL \"block_manifest\"=$manifest\nCOPY src\nCMD [\"run\"]\n",
			wantCode: "COPY_MISSING_ARGS",
		},
	}

	linter := NewLinter(logger.Component("test"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := linter.Lint(tt.content, cpuMachine())
			assert.False(t, result.Valid)
			assert.Contains(t, codes(result.Errors), tt.wantCode)
		})
	}
}

func TestLintContinuations(t *testing.T) {
	content := "FROM x:1\n" +
		"ARG manifest\n" +
		"LABEL \"block_manifest\"=$manifest\n" +
		"RUN apt-get update && apt-get install -y gdal-bin \\\n" +
		"    libgdal-dev \\\n" +
		"    && rm -rf /var/lib/apt/lists/*\n" +
		"CMD [\"run\"]\n"

	result := NewLinter(logger.Component("test")).Lint(content, cpuMachine())
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.NotContains(t, warningCodes(result.Warnings), "APT_CACHE_KEPT")
}

func TestLintAptCacheWarning(t *testing.T) {
	content := "FROM x:1\n" +
		"ARG manifest\n" +
		"LABEL \"block_manifest\"=$manifest\n" +
		"RUN apt-get update && apt-get install -y gdal-bin\n" +
		"CMD [\"run\"]\n"

	result := NewLinter(logger.Component("test")).Lint(content, cpuMachine())
	assert.True(t, result.Valid)
	assert.Contains(t, warningCodes(result.Warnings), "APT_CACHE_KEPT")
}

func TestLintGPUBaseMismatch(t *testing.T) {
	content := "FROM tensorflow/tensorflow:1.15.5-py3\n" +
		"ARG manifest\n" +
		"LABEL \"block_manifest\"=$manifest\n" +
		"CMD [\"run\"]\n"

	result := NewLinter(logger.Component("test")).Lint(content, gpuMachine())
	assert.True(t, result.Valid)
	assert.Contains(t, warningCodes(result.Warnings), "GPU_BASE_MISMATCH")
}
