package keypair

import (
	"context"
	"fmt"

	"github.com/xabinapal/gssh/internal/runner"
)

// Generator creates new keypairs on disk.
type Generator interface {
	// Generate writes a new private key at path and its public key at
	// path+".pub", with an empty passphrase.
	Generate(ctx context.Context, kind Kind, path, comment string) error
}

// SSHKeygen is a Generator backed by the ssh-keygen executable.
type SSHKeygen struct {
	binary string
	runner runner.Runner
}

// NewSSHKeygen creates a Generator running binary through r.
func NewSSHKeygen(binary string, r runner.Runner) *SSHKeygen {
	return &SSHKeygen{binary: binary, runner: r}
}

// Generate runs `ssh-keygen -t <kind> -f <path> -C <comment> -N ""`.
func (g *SSHKeygen) Generate(ctx context.Context, kind Kind, path, comment string) error {
	if kind.Basename() == "" {
		return fmt.Errorf("unsupported key kind %d", kind)
	}

	args := []string{"-t", kind.String(), "-f", path, "-C", comment, "-N", ""}
	if _, err := runner.Exec(ctx, g.runner, nil, g.binary, args...); err != nil {
		return fmt.Errorf("failed to generate %s key: %w", kind, err)
	}
	return nil
}
