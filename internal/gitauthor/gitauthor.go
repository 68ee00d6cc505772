// Package gitauthor reads a profile's Git author identity and applies it to
// git's user.name and user.email settings.
package gitauthor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xabinapal/gssh/internal/utils"
)

// FileName is the author file stored in each profile directory.
const FileName = "git_author.txt"

// ErrNotInRepository indicates a local scope write outside a Git work tree.
var ErrNotInRepository = errors.New("not inside a Git repo (no .git)")

var namedEmail = regexp.MustCompile(`^(.+?)\s*<([^>]+)>$`)

// Scope selects which git configuration file receives the author.
type Scope int

const (
	// ScopeGlobal writes to the user's global git config.
	ScopeGlobal Scope = iota
	// ScopeLocal writes to the repository in the working directory.
	ScopeLocal
)

// Flag returns the git config flag for the scope.
func (s Scope) Flag() string {
	if s == ScopeLocal {
		return "--local"
	}
	return "--global"
}

// String returns the scope label shown to users.
func (s Scope) String() string {
	if s == ScopeLocal {
		return "LOCAL"
	}
	return "GLOBAL"
}

// Author is a Git author identity. Either field may be empty.
type Author struct {
	Name  string
	Email string
}

// String renders the author in the "Name <email>" form written to FileName.
func (a *Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Parse parses the contents of an author file. Blank lines are ignored. A
// single "Name <email>" line is split, any other single line is a bare name,
// and with two or more lines the first two are name and email. It returns nil
// when there is nothing to parse.
func Parse(content string) *Author {
	lines := utils.NonBlankLines(content)

	switch len(lines) {
	case 0:
		return nil
	case 1:
		if m := namedEmail.FindStringSubmatch(lines[0]); m != nil {
			return &Author{Name: strings.TrimSpace(m[1]), Email: strings.TrimSpace(m[2])}
		}
		return &Author{Name: lines[0]}
	default:
		return &Author{Name: lines[0], Email: lines[1]}
	}
}

// ParseFile reads and parses an author file. A missing or blank file yields
// nil without error.
func ParseFile(path string) (*Author, error) {
	// #nosec G304 - path is inside the profile store
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read git author: %w", err)
	}
	return Parse(string(data)), nil
}

// WriteFile stores the author in "Name <email>" form.
func (a *Author) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(a.String()), 0600); err != nil {
		return fmt.Errorf("failed to write git author: %w", err)
	}
	return nil
}

// Configurer sets git configuration values.
type Configurer interface {
	SetConfig(ctx context.Context, scope Scope, workDir, key, value string) error
}

// Apply writes user.email then user.name, skipping empty values. For
// ScopeLocal, workDir must contain a .git entry.
func (a *Author) Apply(ctx context.Context, cfg Configurer, scope Scope, workDir string) error {
	if scope == ScopeLocal {
		if _, err := os.Stat(filepath.Join(workDir, ".git")); err != nil {
			return fmt.Errorf("%w: aborting local git config change", ErrNotInRepository)
		}
	}

	if a.Email != "" {
		if err := cfg.SetConfig(ctx, scope, workDir, "user.email", a.Email); err != nil {
			return err
		}
	}
	if a.Name != "" {
		if err := cfg.SetConfig(ctx, scope, workDir, "user.name", a.Name); err != nil {
			return err
		}
	}
	return nil
}
