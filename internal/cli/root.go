// Package cli provides the command-line interface for gssh.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xabinapal/gssh/internal/clipboard"
	"github.com/xabinapal/gssh/internal/config"
	"github.com/xabinapal/gssh/internal/gitauthor"
	"github.com/xabinapal/gssh/internal/keypair"
	"github.com/xabinapal/gssh/internal/lock"
	"github.com/xabinapal/gssh/internal/logging"
	"github.com/xabinapal/gssh/internal/notify"
	"github.com/xabinapal/gssh/internal/profile"
	"github.com/xabinapal/gssh/internal/prompt"
	"github.com/xabinapal/gssh/internal/runner"
	"github.com/xabinapal/gssh/internal/ui"
)

// CLI holds the application state for the CLI.
type CLI struct {
	Config  *config.Config
	Paths   config.Paths
	Store   *profile.Store
	Manager *profile.Manager
	Logger  *zap.Logger
	rootCmd *cobra.Command

	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool
	home        string
	runner      runner.Runner
	clipboard   clipboard.Copier
	notifier    notify.Notifier
	printer     *ui.Printer

	// Flags
	verboseFlag bool
	outputFlag  string
}

// Option configures a CLI.
type Option func(*CLI)

// WithIO replaces the standard streams. Prompts read from in.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(c *CLI) {
		c.in = in
		c.out = out
		c.errOut = errOut
	}
}

// WithInteractive overrides terminal detection on stdin.
func WithInteractive(interactive bool) Option {
	return func(c *CLI) { c.interactive = interactive }
}

// WithHome sets the home directory the SSH paths are derived from.
func WithHome(home string) Option {
	return func(c *CLI) { c.home = home }
}

// WithRunner sets the runner used for ssh-keygen and git.
func WithRunner(r runner.Runner) Option {
	return func(c *CLI) { c.runner = r }
}

// WithClipboard sets the clipboard used by pubkey.
func WithClipboard(cp clipboard.Copier) Option {
	return func(c *CLI) { c.clipboard = cp }
}

// WithNotifier sets the desktop notifier used after switches.
func WithNotifier(n notify.Notifier) Option {
	return func(c *CLI) { c.notifier = n }
}

// New creates a new CLI instance.
func New(opts ...Option) *CLI {
	cli := &CLI{
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: prompt.IsInteractive(os.Stdin),
		runner:      runner.New(),
		Logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(cli)
	}

	cli.rootCmd = &cobra.Command{
		Use:   "gssh",
		Short: "gssh - SSH + Git author profile manager",
		Long: `gssh manages named identity profiles, each bundling an SSH keypair and a
Git author, and switches the system-wide SSH key and Git user between them.

Profiles live under ~/.ssh/profiles/<name>. Run without a command to see the
active profile and its public key.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.initialize(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runMenu(cmd.Context())
		},
	}

	cli.rootCmd.SetIn(cli.in)
	cli.rootCmd.SetOut(cli.out)
	cli.rootCmd.SetErr(cli.errOut)

	// Global flags
	cli.rootCmd.PersistentFlags().BoolVarP(&cli.verboseFlag, "verbose", "v", false, "Enable verbose output")
	cli.rootCmd.PersistentFlags().StringVarP(&cli.outputFlag, "output", "o", "text", "Output format (text, json, yaml)")

	// Add commands
	cli.addCommands()

	return cli
}

// addCommands adds all subcommands to the root command.
func (cli *CLI) addCommands() {
	cli.rootCmd.AddCommand(
		cli.newListCmd(),
		cli.newUseCmd(),
		cli.newAddCmd(),
		cli.newRemoveCmd(),
		cli.newCurrentCmd(),
		cli.newPubkeyCmd(),
		cli.newDoctorCmd(),
		cli.newConfigCmd(),
		cli.newVersionCmd(),
		cli.newCompletionCmd(),
	)
}

// resolvePaths returns the SSH locations for the configured home directory.
func (cli *CLI) resolvePaths() (config.Paths, error) {
	if cli.home != "" {
		return config.NewPaths(cli.home), nil
	}
	return config.DefaultPaths()
}

// initialize loads configuration and wires the profile manager.
func (cli *CLI) initialize(cmd *cobra.Command) error {
	if _, err := ParseOutputFormat(cli.outputFlag); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil && !skipsValidation(cmd) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cli.Config = cfg

	logger, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Verbose: cli.verboseFlag,
		Output:  cli.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	cli.Logger = logger

	paths, err := cli.resolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	cli.Paths = paths
	cli.Store = profile.NewStore(paths)

	if cli.clipboard == nil {
		cli.clipboard = clipboard.New(cfg.Clipboard.Enabled)
	}
	if cli.notifier == nil {
		cli.notifier = notify.New(cfg.Notifications)
	}
	cli.printer = ui.NewPrinter(cli.out)

	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}

	cli.Manager = profile.NewManager(cli.Store,
		profile.WithKeyGenerator(keypair.NewSSHKeygen(cfg.Keygen.Binary, cli.runner)),
		profile.WithGitConfigurer(gitauthor.NewGitCLI(cfg.Git.Binary, cli.runner)),
		profile.WithPrompter(prompt.New(cli.in, cli.out)),
		profile.WithPrinter(cli.printer),
		profile.WithLocker(lock.New(cfg.SwitchLock, paths.LockFile)),
		profile.WithNotifier(cli.notifier),
		profile.WithLogger(logger),
		profile.WithWorkDir(workDir),
	)

	logger.Debug("initialized",
		zap.String("command", cmd.Name()),
		zap.String("profiles_dir", paths.ProfilesDir),
		zap.String("config_file", cfg.FilePath()))

	return nil
}

// Execute runs the CLI.
func (cli *CLI) Execute(ctx context.Context) error {
	defer func() { _ = cli.Logger.Sync() }()
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides the arguments parsed by Execute.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

// outputWriter returns the writer for the --output flag.
func (cli *CLI) outputWriter() (*OutputWriter, error) {
	format, err := ParseOutputFormat(cli.outputFlag)
	if err != nil {
		return nil, err
	}
	return NewOutputWriter(format, cli.out), nil
}

// offerImport runs the import flow when the store is empty and stdin is a
// terminal.
func (cli *CLI) offerImport(ctx context.Context) {
	if !cli.interactive {
		return
	}
	n, err := cli.Manager.Import(ctx)
	if err != nil {
		cli.Logger.Warn("import failed", zap.Error(err))
		return
	}
	if n > 0 {
		cli.Logger.Debug("imported keys", zap.Int("count", n))
	}
}

// getProfileNames returns the profile names for shell completion.
func (cli *CLI) getProfileNames() []string {
	store := cli.Store
	if store == nil {
		paths, err := cli.resolvePaths()
		if err != nil {
			return nil
		}
		store = profile.NewStore(paths)
	}
	names, err := store.List()
	if err != nil {
		return nil
	}
	return names
}

// completeProfileName completes the first positional argument.
func (cli *CLI) completeProfileName(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return cli.getProfileNames(), cobra.ShellCompDirectiveNoFileComp
}
