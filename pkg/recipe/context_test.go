package recipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContextFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/run.py":            "print('hi')",
		"src/model/layers.py":   "",
		"src/__pycache__/x.pyc": "",
		"weights/model.h5":      "binary",
		"notes/scratch.log":     "",
		".git/config":           "",
		"Dockerfile":            "FROM x:1",
		".dockerignore":         "notes/\n",
		"UP42Manifest.json":     "{}",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestContextFiles(t *testing.T) {
	root := writeContextFixture(t)

	files, err := ContextFiles(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"UP42Manifest.json",
		"src/model/layers.py",
		"src/run.py",
		"weights/model.h5",
	}, files)
}

func TestContextFilesNoIgnoreFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "run.py"), []byte(""), 0o644))

	files, err := ContextFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"run.py"}, files)
}

func TestCheckContext(t *testing.T) {
	root := writeContextFixture(t)
	r, err := Parse([]byte(sampleRecipe))
	require.NoError(t, err)

	result, err := CheckContext(r, root)
	require.NoError(t, err)
	assert.True(t, result.Valid, "errors: %v", result.Errors)
}

func TestCheckContextMissingPieces(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "run.py"), []byte(""), 0o644))

	r, err := Parse([]byte(sampleRecipe))
	require.NoError(t, err)

	result, err := CheckContext(r, root)
	require.NoError(t, err)
	require.False(t, result.Valid)

	found := map[string]bool{}
	for _, e := range result.Errors {
		found[e.Code] = true
	}
	assert.True(t, found["SOURCE_MISSING"])
	assert.True(t, found["WEIGHTS_MISSING"])
}

func TestContextTree(t *testing.T) {
	root := writeContextFixture(t)

	tree, err := ContextTree(root)
	require.NoError(t, err)

	assert.Contains(t, tree, `"src": {`)
	assert.Contains(t, tree, `"run.py"`)
	assert.NotContains(t, tree, "scratch.log")
	assert.NotContains(t, tree, "Dockerfile")
}
