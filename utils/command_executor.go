package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/compprog-lecture-tools/problem-list/build_orchestrator/contracts"
)

// CommandExecutor runs external build commands such as make targets
type CommandExecutor struct {
	stdout io.Writer
	stderr io.Writer
}

// NewCommandExecutor creates an executor that streams to the process output
func NewCommandExecutor() contracts.ICommandRunner {
	return &CommandExecutor{stdout: os.Stdout, stderr: os.Stderr}
}

// NewCommandExecutorWithOutput creates an executor that streams to the given writers
func NewCommandExecutorWithOutput(stdout io.Writer, stderr io.Writer) contracts.ICommandRunner {
	return &CommandExecutor{stdout: stdout, stderr: stderr}
}

// Run executes args in dir and waits for it to finish. Cancelling ctx kills
// the process.
func (ce *CommandExecutor) Run(ctx context.Context, dir string, args []string) error {
	cmd, err := ce.command(ctx, dir, args)
	if err != nil {
		return err
	}
	cmd.Stdout = ce.stdout
	cmd.Stderr = ce.stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed in %s: %w", strings.Join(args, " "), dir, err)
	}
	return nil
}

// Output executes args in dir and captures stdout; stderr is still streamed
func (ce *CommandExecutor) Output(ctx context.Context, dir string, args []string) ([]byte, error) {
	cmd, err := ce.command(ctx, dir, args)
	if err != nil {
		return nil, err
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = ce.stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("command %q failed in %s: %w", strings.Join(args, " "), dir, err)
	}
	return stdout.Bytes(), nil
}

func (ce *CommandExecutor) command(ctx context.Context, dir string, args []string) (*exec.Cmd, error) {
	if len(args) == 0 || args[0] == "" {
		return nil, fmt.Errorf("empty command provided")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	return cmd, nil
}
