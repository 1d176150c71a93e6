package recipe

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"blockforge/pkg/validation"
)

var defaultContextIgnores = []string{
	".git/",
	".DS_Store",
	".idea/",
	".vscode/",
	"__pycache__/",
	"*.pyc",
	"*.log",
	"Dockerfile",
	".dockerignore",
}

// ContextFiles lists the files that would enter the docker build context
// rooted at root, honoring .dockerignore when present. Paths are relative
// to root and sorted.
func ContextFiles(root string) ([]string, error) {
	patterns := append([]string{}, defaultContextIgnores...)

	ignorePath := filepath.Join(root, ".dockerignore")
	if raw, err := os.ReadFile(ignorePath); err == nil {
		patterns = append(patterns, strings.Split(string(raw), "\n")...)
	}
	matcher := ignore.CompileIgnoreLines(patterns...)

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil || relPath == "." {
			return nil
		}

		pathToMatch := relPath
		if info.IsDir() {
			pathToMatch = relPath + string(filepath.Separator)
		}
		if matcher.MatchesPath(pathToMatch) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.IsDir() {
			files = append(files, filepath.ToSlash(relPath))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CheckContext verifies the build context contains everything the recipe
// copies into the image, before a build is attempted.
func CheckContext(r *Recipe, root string) (*validation.Result, error) {
	files, err := ContextFiles(root)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}
	hasPrefix := func(dir string) bool {
		prefix := strings.TrimSuffix(filepath.ToSlash(dir), "/") + "/"
		for _, f := range files {
			if strings.HasPrefix(f, prefix) {
				return true
			}
		}
		return false
	}

	result := validation.NewResult()
	if !present[r.Source] && !hasPrefix(r.Source) {
		result.AddError(validation.Error{
			Code:    "SOURCE_MISSING",
			Field:   "source",
			Message: fmt.Sprintf("source directory %q not found in the build context", r.Source),
		})
	}
	for _, w := range r.Weights {
		if !present[filepath.ToSlash(w)] {
			result.AddError(validation.Error{
				Code:    "WEIGHTS_MISSING",
				Field:   "weights",
				Message: fmt.Sprintf("weight file %q not found in the build context", w),
			})
		}
	}
	return result, nil
}

// ContextTree renders the build context as an indented JSON-like tree
// for display.
func ContextTree(root string) (string, error) {
	files, err := ContextFiles(root)
	if err != nil {
		return "", err
	}

	tree := make(map[string]interface{})
	for _, f := range files {
		parts := strings.Split(f, "/")
		current := tree
		for i, part := range parts {
			if i == len(parts)-1 {
				current[part] = nil
				continue
			}
			if _, ok := current[part]; !ok {
				current[part] = make(map[string]interface{})
			}
			current = current[part].(map[string]interface{})
		}
	}

	var buffer bytes.Buffer
	formatTree(tree, &buffer, 0)
	return buffer.String(), nil
}

func formatTree(tree map[string]interface{}, buffer *bytes.Buffer, indent int) {
	buffer.WriteString("{\n")

	names := make([]string, 0, len(tree))
	for k := range tree {
		names = append(names, k)
	}
	sort.Strings(names)

	for i, name := range names {
		buffer.WriteString(strings.Repeat("  ", indent+1))
		buffer.WriteString("\"" + name + "\"")

		if sub, isDir := tree[name].(map[string]interface{}); isDir {
			buffer.WriteString(": ")
			formatTree(sub, buffer, indent+1)
		}

		if i < len(names)-1 {
			buffer.WriteString(",")
		}
		buffer.WriteString("\n")
	}

	buffer.WriteString(strings.Repeat("  ", indent) + "}")
}
