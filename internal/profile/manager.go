package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/xabinapal/gssh/internal/gitauthor"
	"github.com/xabinapal/gssh/internal/keypair"
	"github.com/xabinapal/gssh/internal/lock"
	"github.com/xabinapal/gssh/internal/notify"
	"github.com/xabinapal/gssh/internal/prompt"
	"github.com/xabinapal/gssh/internal/ui"
	"github.com/xabinapal/gssh/internal/utils"
)

// Manager performs the operations that change profiles or the active identity.
type Manager struct {
	store    *Store
	keygen   keypair.Generator
	git      gitauthor.Configurer
	prompter prompt.Prompter
	printer  *ui.Printer
	locker   lock.Locker
	notifier notify.Notifier
	logger   *zap.Logger
	workDir  string
}

// Option configures a Manager.
type Option func(*Manager)

// WithKeyGenerator sets the key generator used by Add.
func WithKeyGenerator(g keypair.Generator) Option {
	return func(m *Manager) { m.keygen = g }
}

// WithGitConfigurer sets how the git author is written.
func WithGitConfigurer(c gitauthor.Configurer) Option {
	return func(m *Manager) { m.git = c }
}

// WithPrompter sets the source of interactive answers.
func WithPrompter(p prompt.Prompter) Option {
	return func(m *Manager) { m.prompter = p }
}

// WithPrinter sets where progress messages go.
func WithPrinter(p *ui.Printer) Option {
	return func(m *Manager) { m.printer = p }
}

// WithLocker sets the lock guarding the active profile.
func WithLocker(l lock.Locker) Option {
	return func(m *Manager) { m.locker = l }
}

// WithNotifier sets the desktop notifier used after switches.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithWorkDir sets the directory treated as the current repository for
// local scope switches.
func WithWorkDir(dir string) Option {
	return func(m *Manager) { m.workDir = dir }
}

// NewManager creates a Manager over store. A key generator and a git
// configurer must be supplied for Add and Switch.
func NewManager(store *Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		prompter: prompt.New(os.Stdin, os.Stdout),
		printer:  ui.NewPrinter(os.Stdout),
		locker:   lock.Nop{},
		logger:   zap.NewNop(),
		workDir:  ".",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the store the manager works on.
func (m *Manager) Store() *Store {
	return m.store
}

// SwitchOptions configures Switch.
type SwitchOptions struct {
	// Local writes the git author to the repository in the work directory
	// instead of the global git config.
	Local bool
}

func (o SwitchOptions) scope() gitauthor.Scope {
	if o.Local {
		return gitauthor.ScopeLocal
	}
	return gitauthor.ScopeGlobal
}

// SwitchResult describes a committed switch.
type SwitchResult struct {
	Profile string
	KeyPair *keypair.KeyPair
	Author  *gitauthor.Author
	// AuthorSkipped is set when the profile has no author file.
	AuthorSkipped bool
	// AuthorErr holds the failure to write the git author. The key was
	// installed and the marker written regardless.
	AuthorErr error
}

// Switch makes name the active profile: installs its key into the SSH
// directory, applies its git author and writes the marker, holding the lock
// throughout.
func (m *Manager) Switch(ctx context.Context, name string, opts SwitchOptions) (*SwitchResult, error) {
	// Unknown profiles fail before the lock file is created.
	exists, err := m.store.Exists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, m.store.notFound(name)
	}

	release, err := m.locker.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := m.switchTo(ctx, name, opts)
	if err != nil {
		if nerr := m.notifyFailure(name, err); nerr != nil {
			m.logger.Warn("notification failed", zap.Error(nerr))
		}
		return nil, err
	}
	return res, nil
}

func (m *Manager) notifyFailure(name string, err error) error {
	if m.notifier == nil || errors.Is(err, ErrProfileNotFound) || errors.Is(err, lock.ErrLocked) {
		return nil
	}
	return m.notifier.NotifyFailure(name, err)
}

// switchTo runs the switch steps. The caller holds the lock. Existence is
// checked again because Remove calls this directly.
func (m *Manager) switchTo(ctx context.Context, name string, opts SwitchOptions) (*SwitchResult, error) {
	exists, err := m.store.Exists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, m.store.notFound(name)
	}

	dir := m.store.Dir(name)
	kp, err := keypair.Resolve(dir)
	if err != nil {
		return nil, err
	}
	if kp == nil {
		return nil, fmt.Errorf("%w: profile '%s' doesn't contain id_ed25519 or id_rsa", ErrNoUsableKey, name)
	}

	// A local switch outside a repository is a usage error; reject it
	// before the live key is touched.
	if opts.Local {
		if _, err := os.Stat(filepath.Join(m.workDir, ".git")); err != nil {
			return nil, fmt.Errorf("%w: aborting local git config change", gitauthor.ErrNotInRepository)
		}
	}

	m.logger.Debug("installing keypair", zap.String("profile", name), zap.String("key", kp.Basename()))
	if err := kp.Install(m.store.paths.SSHDir); err != nil {
		return nil, err
	}

	res := &SwitchResult{Profile: name, KeyPair: kp}

	author, err := m.store.Author(name)
	switch {
	case err != nil:
		res.AuthorErr = err
	case author == nil:
		res.AuthorSkipped = true
	default:
		res.Author = author
		res.AuthorErr = author.Apply(ctx, m.git, opts.scope(), m.workDir)
	}

	switch {
	case res.AuthorSkipped:
		m.printer.Warn("No git_author.txt found or parsed; skipping git author change.")
	case res.AuthorErr != nil:
		m.logger.Warn("git author not applied", zap.String("profile", name), zap.Error(res.AuthorErr))
		m.printer.Warn("Warning: SSH key switched but git author was not set: %v", res.AuthorErr)
	default:
		m.printer.Println(fmt.Sprintf("Set %s git user to '%s' <%s>", opts.scope(), author.Name, author.Email))
	}

	if err := m.store.WriteMarker(name); err != nil {
		return nil, err
	}
	m.printer.Println("Switched profile ->", m.printer.Highlight(name))

	if m.notifier != nil {
		if err := m.notifier.NotifySwitch(name, kp.Kind.String()); err != nil {
			m.logger.Warn("notification failed", zap.Error(err))
		}
	}

	return res, nil
}

// withCleanup creates dir, runs body and removes dir again if body fails.
// Removal errors are ignored; body's error is returned.
func withCleanup(dir string, body func() error) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	if err := body(); err != nil {
		_ = os.RemoveAll(dir)
		return err
	}
	return nil
}

// promptAuthor asks for the git author name and email. Both are required.
func (m *Manager) promptAuthor() (*gitauthor.Author, error) {
	name, err := m.prompter.Prompt("Enter Git author name: ")
	if err != nil {
		return nil, err
	}
	email, err := m.prompter.Prompt("Enter Git author email: ")
	if err != nil {
		return nil, err
	}
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInputRequired)
	}
	return &gitauthor.Author{Name: name, Email: email}, nil
}

// checkNewName validates a name for a profile about to be created.
func (m *Manager) checkNewName(name string) error {
	if !utils.IsValidProfileName(name) {
		return fmt.Errorf("%w: %q (use letters, digits, '.', '_' or '-', not starting with '.')", ErrInvalidProfileName, name)
	}
	ok, err := keypair.Exists(m.store.Dir(name))
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: %s", ErrProfileExists, name)
	}
	return nil
}

// Add creates a profile with a fresh ed25519 key and the git author typed in
// by the user. Nothing is left behind on failure.
func (m *Manager) Add(ctx context.Context, name string) error {
	if err := m.checkNewName(name); err != nil {
		return err
	}

	dir := m.store.Dir(name)
	err := withCleanup(dir, func() error {
		author, err := m.promptAuthor()
		if err != nil {
			return err
		}
		if err := author.WriteFile(filepath.Join(dir, gitauthor.FileName)); err != nil {
			return err
		}

		m.printer.Printf("Generating ed25519 keypair in %s ...\n", dir)
		keyPath := filepath.Join(dir, keypair.Ed25519.Basename())
		return m.keygen.Generate(ctx, keypair.Ed25519, keyPath, author.Email)
	})
	if err != nil {
		return err
	}

	m.logger.Debug("profile created", zap.String("profile", name))
	m.printer.Success("Profile '%s' created.", name)
	return nil
}

// Remove deletes a profile after confirmation. When it is the active profile
// (per the marker) the user may pick another profile to switch to; otherwise
// the marker is cleared.
func (m *Manager) Remove(ctx context.Context, name string) error {
	exists, err := m.store.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return m.store.notFound(name)
	}

	marker, err := m.store.ReadMarker()
	if err != nil {
		return err
	}
	isActive := marker == name

	switchTo := ""
	if isActive {
		m.printer.Warn("Warning: '%s' is currently the active profile!", name)
		ok, err := m.prompter.Confirm("Are you sure you want to delete the active profile?", false)
		if err != nil {
			return err
		}
		if !ok {
			m.printer.Println("Aborted.")
			return nil
		}

		switchTo, err = m.chooseReplacement(name)
		if err != nil {
			return err
		}
	} else {
		ok, err := m.prompter.Confirm(fmt.Sprintf("Delete profile %s?", name), false)
		if err != nil {
			return err
		}
		if !ok {
			m.printer.Println("Aborted.")
			return nil
		}
	}

	release, err := m.locker.Lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := os.RemoveAll(m.store.Dir(name)); err != nil {
		return fmt.Errorf("failed to remove profile: %w", err)
	}
	m.printer.Println("Removed profile", name)

	if !isActive {
		return nil
	}

	// The marker must not outlive the directory, even if the replacement
	// switch fails below.
	existed, err := m.store.RemoveMarker()
	if err != nil {
		m.logger.Warn("active marker not removed", zap.Error(err))
	}

	if switchTo != "" {
		if _, err := m.switchTo(ctx, switchTo, SwitchOptions{}); err != nil {
			m.printer.Warn("No active profile set.")
			return err
		}
		return nil
	}

	if existed {
		m.printer.Warn("No active profile set.")
	}
	return nil
}

// chooseReplacement offers the remaining profiles that hold a usable key and
// returns the one picked, or "" to leave no profile active.
func (m *Manager) chooseReplacement(removed string) (string, error) {
	names, err := m.store.List()
	if err != nil {
		return "", err
	}
	others := make([]string, 0, len(names))
	for _, n := range names {
		if n == removed {
			continue
		}
		kp, err := keypair.Resolve(m.store.Dir(n))
		if err != nil {
			return "", err
		}
		if kp != nil {
			others = append(others, n)
		}
	}
	if len(others) == 0 {
		return "", nil
	}

	m.printer.Println()
	m.printer.Heading("Available profiles to switch to:")
	for _, n := range others {
		m.printer.Println("  -", n)
	}
	m.printer.Println()

	answer, err := m.prompter.Prompt("Enter profile name to switch to (or leave blank to have no active profile): ")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", nil
	}
	for _, n := range others {
		if n == answer {
			return n, nil
		}
	}
	m.printer.Warn("Invalid profile name. Removing without switching.")
	return "", nil
}
