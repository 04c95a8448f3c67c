package utils

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitOperations handles git-related operations
type GitOperations struct {
	workingDir string
}

// NewGitOperations creates a new GitOperations instance
func NewGitOperations(workingDir string) *GitOperations {
	return &GitOperations{workingDir: workingDir}
}

// CheckGitRepo checks if the working directory is inside a git repository
func (g *GitOperations) CheckGitRepo(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--git-dir")
	cmd.Dir = g.workingDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("not a git repository: %s", g.workingDir)
	}
	return nil
}

// ShortHash returns the abbreviated hash of HEAD
func (g *GitOperations) ShortHash(ctx context.Context) (string, error) {
	return g.revParse(ctx, "--short", "HEAD")
}

func (g *GitOperations) revParse(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"rev-parse"}, args...)...)
	cmd.Dir = g.workingDir
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to run git rev-parse %s in %s: %w", strings.Join(args, " "), g.workingDir, err)
	}
	return strings.TrimSpace(string(output)), nil
}
