package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xabinapal/gssh/internal/config"
)

// ErrConfigExists is returned by config init when a file is already present.
var ErrConfigExists = errors.New("configuration file already exists")

// configPathOutput represents config path output for JSON.
type configPathOutput struct {
	ConfigFile   string `json:"config_file"`
	ConfigExists bool   `json:"config_exists"`
	SSHDir       string `json:"ssh_dir"`
	ProfilesDir  string `json:"profiles_dir"`
	ActiveFile   string `json:"active_file"`
	LockFile     string `json:"lock_file"`
}

// validationResult represents validation output for JSON.
type validationResult struct {
	Valid      bool     `json:"valid"`
	ConfigFile string   `json:"config_file"`
	Keygen     string   `json:"keygen_binary"`
	Git        string   `json:"git_binary"`
	LogLevel   string   `json:"log_level"`
	Errors     []string `json:"errors,omitempty"`
}

// newConfigCmd creates the config command group.
func (cli *CLI) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gssh configuration",
		Long: `Manage the gssh configuration file.

Use 'gssh config init' to write a configuration file with the defaults.
Use 'gssh config path' to see where gssh reads and writes its files.
Use 'gssh config edit' to open the configuration in your editor.`,
	}

	cmd.AddCommand(
		cli.newConfigInitCmd(),
		cli.newConfigPathCmd(),
		cli.newConfigEditCmd(),
		cli.newConfigValidateCmd(),
	)

	return cmd
}

// skipsValidation reports whether cmd must run with an invalid configuration.
func skipsValidation(cmd *cobra.Command) bool {
	if cmd.Name() == "doctor" {
		return true
	}
	parent := cmd.Parent()
	return parent != nil && parent.Name() == "config"
}

// newConfigInitCmd creates the config init command.
func (cli *CLI) newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cli.Config.FilePath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
			}

			cfg := config.Default()
			if force {
				// Keep the settings already loaded
				cfg = cli.Config
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			cli.printer.Success("Configuration saved to: %s", cfg.FilePath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}

// newConfigPathCmd creates the config path command.
func (cli *CLI) newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration and profile paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, err := cli.outputWriter()
			if err != nil {
				return err
			}

			_, configErr := os.Stat(cli.Config.FilePath())
			output := configPathOutput{
				ConfigFile:   cli.Config.FilePath(),
				ConfigExists: configErr == nil,
				SSHDir:       cli.Paths.SSHDir,
				ProfilesDir:  cli.Paths.ProfilesDir,
				ActiveFile:   cli.Paths.ActiveFile,
				LockFile:     cli.Paths.LockFile,
			}

			return writer.Write(output, func() {
				p := cli.printer
				p.Println("Paths:")
				p.Printf("  Config file:   %s\n", output.ConfigFile)
				p.Printf("  SSH dir:       %s\n", output.SSHDir)
				p.Printf("  Profiles dir:  %s\n", output.ProfilesDir)
				p.Printf("  Active marker: %s\n", output.ActiveFile)
				p.Printf("  Lock file:     %s\n", output.LockFile)

				p.Println("\nStatus:")
				if output.ConfigExists {
					p.Println("  Config file exists")
				} else {
					p.Println("  Config file does not exist, using defaults")
				}
			})
		},
	}
}

// newConfigEditCmd creates the config edit command.
func (cli *CLI) newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open configuration file in editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = os.Getenv("VISUAL")
			}
			if editor == "" {
				// Try common editors
				for _, e := range []string{"vim", "vi", "nano", "notepad"} {
					if _, err := cli.runner.LookPath(e); err == nil {
						editor = e
						break
					}
				}
			}
			if editor == "" {
				return fmt.Errorf("no editor found: set $EDITOR environment variable")
			}

			configPath := cli.Config.FilePath()

			// Ensure config file exists
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := cli.Config.Save(); err != nil {
					return fmt.Errorf("failed to create config file: %w", err)
				}
			}

			editorCmd := cli.runner.CommandContext(cmd.Context(), editor, configPath)
			editorCmd.SetStdin(cli.in)
			editorCmd.SetStdout(cli.out)
			editorCmd.SetStderr(cli.errOut)
			return editorCmd.Run()
		},
	}
}

// newConfigValidateCmd creates the config validate command.
func (cli *CLI) newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, err := cli.outputWriter()
			if err != nil {
				return err
			}

			cfg := cli.Config
			result := validationResult{
				Valid:      true,
				ConfigFile: cfg.FilePath(),
				Keygen:     cfg.Keygen.Binary,
				Git:        cfg.Git.Binary,
				LogLevel:   cfg.LogLevel,
			}
			if err := cfg.Validate(); err != nil {
				result.Valid = false
				result.Errors = append(result.Errors, err.Error())
			}

			writeErr := writer.Write(result, func() {
				p := cli.printer
				p.Printf("Configuration: %s\n", result.ConfigFile)
				p.Printf("  keygen.binary: %s\n", result.Keygen)
				p.Printf("  git.binary:    %s\n", result.Git)
				p.Printf("  log_level:     %s\n", result.LogLevel)
				p.Println()
				if result.Valid {
					p.Success("Configuration is valid.")
					return
				}
				for _, e := range result.Errors {
					p.Error("  %s", e)
				}
			})
			if writeErr != nil {
				return writeErr
			}
			if !result.Valid {
				return fmt.Errorf("configuration is invalid")
			}
			return nil
		},
	}
}
