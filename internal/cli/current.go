package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xabinapal/gssh/internal/keypair"
	"github.com/xabinapal/gssh/internal/profile"
)

// CurrentOutput represents current command output for JSON.
type CurrentOutput struct {
	Active string         `json:"active,omitempty"`
	Source profile.Source `json:"source"`
}

// PubkeyOutput represents pubkey command output for JSON.
type PubkeyOutput struct {
	Profile     string `json:"profile"`
	PublicKey   string `json:"public_key"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// newCurrentCmd creates the current command.
func (cli *CLI) newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the active profile",
		Long: `Show the active profile.

The marker file ~/.ssh/git-ssh-active.txt is trusted when present. Otherwise
the public key installed in ~/.ssh is matched against the profiles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter()
			if err != nil {
				return err
			}
			return cli.runCurrent(output)
		},
	}
}

// runCurrent prints the active profile and how it was found.
func (cli *CLI) runCurrent(output *OutputWriter) error {
	active, err := cli.Store.Active()
	if err != nil {
		return err
	}

	return output.Write(CurrentOutput{Active: active.Name, Source: active.Source}, func() {
		if !active.Found() {
			cli.printer.Println("No active profile detected.")
			return
		}
		cli.printer.Println(fmt.Sprintf("Active (%s):", active.Source), cli.printer.Highlight(active.Name))
	})
}

// newPubkeyCmd creates the pubkey command.
func (cli *CLI) newPubkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey",
		Short: "Display the active public key",
		Long: `Print the public key of the active profile, ready to paste into GitHub or
any other service, and copy it to the clipboard when possible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter()
			if err != nil {
				return err
			}
			return cli.runPubkey(output)
		},
	}
}

// runPubkey prints the active profile's public key and copies it to the
// clipboard in text mode.
func (cli *CLI) runPubkey(output *OutputWriter) error {
	active, err := cli.Store.Active()
	if err != nil {
		return err
	}
	if !active.Found() {
		return fmt.Errorf("%w: use 'gssh use <profile>' to activate one", profile.ErrNoActiveProfile)
	}

	pub, err := cli.Store.PublicKey(active.Name)
	if err != nil {
		return err
	}

	result := PubkeyOutput{Profile: active.Name, PublicKey: pub}
	if fp, err := keypair.Fingerprint([]byte(pub)); err == nil {
		result.Fingerprint = fp
	} else {
		cli.Logger.Debug("public key not parseable", zap.String("profile", active.Name), zap.Error(err))
	}

	return output.Write(result, func() {
		cli.printer.Heading("Public key for profile '%s':", active.Name)
		cli.printer.Println()
		cli.printer.Println(pub)
		cli.printer.Println()
		if result.Fingerprint != "" {
			cli.printer.Hint("Fingerprint: %s", result.Fingerprint)
		}

		if err := cli.clipboard.Copy(pub); err != nil {
			cli.Logger.Warn("clipboard copy failed", zap.Error(err))
			cli.printer.Warn("Note: Could not copy to clipboard. Copy the key above manually.")
			return
		}
		cli.printer.Success("✓ Public key copied to clipboard!")
	})
}

// runMenu is the root command: import offer, usage, active profile and its
// public key.
func (cli *CLI) runMenu(ctx context.Context) error {
	cli.offerImport(ctx)

	p := cli.printer
	p.Println()
	p.Heading("gssh - SSH + Git author profile manager")
	p.Println()
	p.Warn("Usage:")
	p.Println("  gssh                      Show current/active profile")
	p.Println("  gssh list                 List all profiles")
	p.Println("  gssh use <profile>        Switch SSH key + set Git author globally")
	p.Println("  gssh use <profile> -l     Switch SSH key + set Git author locally (current repo only)")
	p.Println("  gssh add <profile>        Create a new profile")
	p.Println("  gssh remove <profile>     Delete a profile")
	p.Println("  gssh current              Show current/active profile")
	p.Println("  gssh pubkey               Display current public key (for GitHub, etc.)")
	p.Println("  gssh doctor               Check keys, permissions and tools")
	p.Println()
	p.Hint("Profiles are stored in: %s", cli.Paths.ProfilesDir)
	p.Println()
	p.Hint("Note: SSH keys are always system-wide. The -l flag only affects Git author config.")
	p.Println()

	text := NewOutputWriter(OutputFormatText, cli.printer.Writer())
	if err := cli.runCurrent(text); err != nil {
		return err
	}

	active, err := cli.Store.Active()
	if err != nil || !active.Found() {
		return nil
	}
	p.Println()
	if err := cli.runPubkey(text); err != nil {
		cli.Logger.Warn("public key not shown", zap.Error(err))
	}
	return nil
}
