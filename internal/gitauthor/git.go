package gitauthor

import (
	"context"
	"fmt"

	"github.com/xabinapal/gssh/internal/runner"
)

// GitCLI is a Configurer backed by the git executable.
type GitCLI struct {
	binary string
	runner runner.Runner
}

// NewGitCLI creates a Configurer running binary through r.
func NewGitCLI(binary string, r runner.Runner) *GitCLI {
	return &GitCLI{binary: binary, runner: r}
}

// SetConfig runs `git config <scope> <key> <value>` in workDir.
func (g *GitCLI) SetConfig(ctx context.Context, scope Scope, workDir, key, value string) error {
	args := []string{"config", scope.Flag(), key, value}
	if scope == ScopeLocal && workDir != "" {
		args = append([]string{"-C", workDir}, args...)
	}
	if _, err := runner.Exec(ctx, g.runner, nil, g.binary, args...); err != nil {
		return fmt.Errorf("failed to set git %s: %w", key, err)
	}
	return nil
}
