package recipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"blockforge/pkg/logger"
	"blockforge/pkg/manifest"
	"blockforge/pkg/runner"
)

// Builder assembles block images with the docker CLI.
type Builder struct {
	runner runner.CommandRunner
}

func NewBuilder(cr runner.CommandRunner) *Builder {
	return &Builder{runner: cr}
}

// CheckDocker verifies the docker daemon is reachable.
func (b *Builder) CheckDocker(ctx context.Context) error {
	if _, err := b.runner.RunCommand(ctx, "docker", "version", "--format", "{{.Server.Version}}"); err != nil {
		return fmt.Errorf("docker daemon is not running or not accessible: %w", err)
	}
	return nil
}

// Materialize writes the rendered Dockerfile and, when the recipe needs
// one, the requirements file into the build context.
func (b *Builder) Materialize(r *Recipe, m *manifest.Manifest, contextDir string) (string, error) {
	content, err := Generate(r, m.Machine)
	if err != nil {
		return "", err
	}

	dockerfilePath := filepath.Join(contextDir, "Dockerfile")
	if err := os.WriteFile(dockerfilePath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing Dockerfile: %w", err)
	}

	if reqs := r.Requirements(); reqs != "" {
		reqPath := filepath.Join(contextDir, "requirements.txt")
		if err := os.WriteFile(reqPath, []byte(reqs), 0o644); err != nil {
			return "", fmt.Errorf("writing requirements.txt: %w", err)
		}
	}

	ignorePath := filepath.Join(contextDir, ".dockerignore")
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		content := strings.Join(defaultContextIgnores, "\n") + "\n"
		if err := os.WriteFile(ignorePath, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("writing .dockerignore: %w", err)
		}
	}
	return dockerfilePath, nil
}

// Build runs docker build with the manifest passed as a build argument
// and returns the image tag.
func (b *Builder) Build(ctx context.Context, m *manifest.Manifest, contextDir, tag string) (string, error) {
	manifestJSON, err := m.JSON()
	if err != nil {
		return "", err
	}
	if tag == "" {
		tag = m.Name + ":latest"
	}

	logger.Infof("building block image %s", tag)
	out, err := b.runner.RunCommand(ctx, "docker", "build",
		"--build-arg", fmt.Sprintf("%s=%s", ManifestBuildArg, manifestJSON),
		"-t", tag,
		contextDir)
	if err != nil {
		return "", fmt.Errorf("docker build failed: %w\n%s", err, out)
	}
	logger.Infof("built block image %s", tag)
	return tag, nil
}

// InspectManifest reads the manifest label back from a built image.
func (b *Builder) InspectManifest(ctx context.Context, tag string) (*manifest.Manifest, error) {
	out, err := b.runner.RunCommand(ctx, "docker", "inspect",
		"--format", fmt.Sprintf("{{ index .Config.Labels %q }}", ManifestLabel), tag)
	if err != nil {
		return nil, fmt.Errorf("docker inspect failed: %w", err)
	}
	raw := strings.TrimSpace(out)
	if raw == "" || raw == "<no value>" {
		return nil, fmt.Errorf("image %s carries no %s label", tag, ManifestLabel)
	}
	return manifest.Parse([]byte(raw))
}
