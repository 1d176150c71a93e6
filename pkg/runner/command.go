package runner

import (
	"context"
	"errors"
	"os/exec"

	"blockforge/pkg/logger"
)

// CommandRunner is an interface for executing commands and getting the output/error
type CommandRunner interface {
	RunCommand(ctx context.Context, args ...string) (string, error)
}

type DefaultCommandRunner struct{}

var _ CommandRunner = &DefaultCommandRunner{}

func (d *DefaultCommandRunner) RunCommand(ctx context.Context, args ...string) (string, error) {
	logger.Debugf("Running command: %s", args)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.CombinedOutput()
	logger.Debugf("Command output: %s", string(out))
	return string(out), err
}

type FakeCommandRunner struct {
	Output string
	ErrStr string
	// Calls records every invocation for assertions.
	Calls [][]string
}

var _ CommandRunner = &FakeCommandRunner{}

func (f *FakeCommandRunner) RunCommand(_ context.Context, args ...string) (string, error) {
	f.Calls = append(f.Calls, args)
	if f.ErrStr != "" {
		return f.Output, errors.New(f.ErrStr)
	}
	return f.Output, nil
}

// ScriptedCommandRunner dispatches to a function, for tests that need
// different output per command.
type ScriptedCommandRunner struct {
	Script func(args ...string) (string, error)
}

var _ CommandRunner = &ScriptedCommandRunner{}

func (s *ScriptedCommandRunner) RunCommand(_ context.Context, args ...string) (string, error) {
	return s.Script(args...)
}
