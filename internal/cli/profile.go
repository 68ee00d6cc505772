package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/xabinapal/gssh/internal/profile"
	"github.com/xabinapal/gssh/internal/utils"
)

// ListOutput represents profile list output for JSON.
type ListOutput struct {
	ProfilesDir string         `json:"profiles_dir"`
	Active      string         `json:"active,omitempty"`
	Source      profile.Source `json:"source"`
	Profiles    []profile.Info `json:"profiles"`
}

// Column widths of the list table.
const (
	nameWidth   = 20
	keyWidth    = 8
	pubWidth    = 6
	authorWidth = 6
)

// newListCmd creates the list command.
func (cli *CLI) newListCmd() *cobra.Command {
	var fingerprints bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all profiles",
		Long: `List the profiles in ~/.ssh/profiles with their key type and whether a
public key and a git author are present.

When no profile exists yet, gssh first offers to import the keys already
in ~/.ssh.

Examples:
  # List profiles
  gssh list

  # Include public key fingerprints
  gssh list --fingerprints

  # Output as JSON
  gssh list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter()
			if err != nil {
				return err
			}
			if !output.IsStructured() {
				cli.offerImport(cmd.Context())
			}
			return cli.runList(output, fingerprints)
		},
	}

	cmd.Flags().BoolVar(&fingerprints, "fingerprints", false, "Show the SHA256 fingerprint of each public key")

	return cmd
}

// runList displays all profiles.
func (cli *CLI) runList(output *OutputWriter, fingerprints bool) error {
	infos, err := cli.Store.Infos()
	if err != nil {
		return err
	}

	active, err := cli.Store.Active()
	if err != nil {
		return err
	}

	list := ListOutput{
		ProfilesDir: cli.Paths.ProfilesDir,
		Active:      active.Name,
		Source:      active.Source,
		Profiles:    infos,
	}

	return output.Write(list, func() {
		if len(infos) == 0 {
			cli.printer.Println("No profiles found in " + cli.Paths.ProfilesDir)
			return
		}

		header := []string{
			utils.Pad("PROFILE", nameWidth),
			utils.Pad("KEY", keyWidth),
			utils.Pad("PUB", pubWidth),
		}
		if fingerprints {
			header = append(header, utils.Pad("AUTHOR", authorWidth), "FINGERPRINT")
		} else {
			header = append(header, "AUTHOR")
		}
		cli.printer.Println(strings.Join(header, " "))

		for _, info := range infos {
			name := utils.Pad(info.Name, nameWidth)
			if info.Active {
				name = cli.printer.Highlight(name)
			}
			row := []string{
				name,
				utils.Pad(info.KeyType, keyWidth),
				utils.Pad(yesNo(info.HasPub), pubWidth),
			}
			if fingerprints {
				fp := info.Fingerprint
				if fp == "" {
					fp = "-"
				}
				row = append(row, utils.Pad(yesNo(info.HasAuthor), authorWidth), fp)
			} else {
				row = append(row, yesNo(info.HasAuthor))
			}
			cli.printer.Println(strings.Join(row, " "))
		}
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// newUseCmd creates the use command.
func (cli *CLI) newUseCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:     "use <profile>",
		Aliases: []string{"switch"},
		Short:   "Switch SSH key and Git author to a profile",
		Long: `Install the profile's SSH key into ~/.ssh and set its Git author.

SSH keys are always system-wide. The --local flag only changes where the
Git author is written: the repository in the current directory instead of
the global Git config.

Examples:
  # Switch globally
  gssh use work

  # Switch, writing the Git author to the current repository only
  gssh use personal -l`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.completeProfileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cli.Manager.Switch(cmd.Context(), args[0], profile.SwitchOptions{Local: local})
			return err
		},
	}

	cmd.Flags().BoolVarP(&local, "local", "l", false, "Set the Git author for the current repository only")

	return cmd
}

// newAddCmd creates the add command.
func (cli *CLI) newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <profile>",
		Short: "Create a new profile",
		Long: `Create a profile with a fresh ed25519 keypair.

You are asked for the Git author name and email. The email is also used as
the key comment. Nothing is left behind if any step fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Manager.Add(cmd.Context(), args[0])
		},
	}
}

// newRemoveCmd creates the remove command.
func (cli *CLI) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <profile>",
		Aliases: []string{"rm", "delete"},
		Short:   "Delete a profile",
		Long: `Delete a profile directory after confirmation.

Removing the active profile offers to switch to one of the remaining
profiles first. The key installed in ~/.ssh is left untouched.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.completeProfileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Manager.Remove(cmd.Context(), args[0])
		},
	}
}
