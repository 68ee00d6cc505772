package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xabinapal/gssh/internal/gitauthor"
	"github.com/xabinapal/gssh/internal/keypair"
	"github.com/xabinapal/gssh/internal/runner"
)

// CheckResult represents the result of a diagnostic check.
type CheckResult struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
	Fix     string      `json:"fix,omitempty"`
}

// CheckStatus represents the status of a diagnostic check.
type CheckStatus int

const (
	// CheckOK indicates the check passed.
	CheckOK CheckStatus = iota
	// CheckWarning indicates a non-critical issue.
	CheckWarning
	// CheckError indicates a critical failure.
	CheckError
	// CheckSkipped indicates the check was skipped.
	CheckSkipped
)

// String returns the status name.
func (s CheckStatus) String() string {
	switch s {
	case CheckOK:
		return "OK"
	case CheckWarning:
		return "WARN"
	case CheckError:
		return "ERROR"
	case CheckSkipped:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// Icon returns the status icon for display.
func (s CheckStatus) Icon() string {
	switch s {
	case CheckOK:
		return "[OK]"
	case CheckWarning:
		return "[!!]"
	case CheckError:
		return "[XX]"
	case CheckSkipped:
		return "[--]"
	default:
		return "[??]"
	}
}

// MarshalJSON implements json.Marshaler.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// DoctorOutput represents the doctor command output for JSON.
type DoctorOutput struct {
	Checks      []CheckResult `json:"checks"`
	HasErrors   bool          `json:"has_errors"`
	HasWarnings bool          `json:"has_warnings"`
}

// ErrDiagnosticsFailed is returned by doctor when a check fails.
var ErrDiagnosticsFailed = errors.New("diagnostics failed")

// newDoctorCmd creates the doctor command.
func (cli *CLI) newDoctorCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: `Run diagnostic checks to identify and troubleshoot common issues.

The doctor command checks:
  - Configuration file validity
  - ~/.ssh permissions
  - Profile store contents
  - ssh-keygen and git availability
  - Active marker and installed key agreement
  - Installed private key permissions

Use --verbose for suggested fixes.

Examples:
  # Run diagnostics
  gssh doctor

  # Run with suggested fixes
  gssh doctor --verbose

  # Output as JSON
  gssh doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			return cli.runDoctor(ctx, output, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "fix", "F", false, "Show suggested fixes")

	return cmd
}

// runDoctor runs every check and reports the results.
func (cli *CLI) runDoctor(ctx context.Context, output *OutputWriter, verbose bool) error {
	results := cli.runDiagnostics(ctx)

	hasErrors := false
	hasWarnings := false
	for _, r := range results {
		if r.Status == CheckError {
			hasErrors = true
		}
		if r.Status == CheckWarning {
			hasWarnings = true
		}
	}

	out := DoctorOutput{
		Checks:      results,
		HasErrors:   hasErrors,
		HasWarnings: hasWarnings,
	}

	p := cli.printer
	writeErr := output.Write(out, func() {
		p.Heading("gssh Diagnostics")
		p.Heading("================")
		p.Println()

		for _, r := range results {
			line := fmt.Sprintf("%s %s", r.Status.Icon(), r.Name)
			if r.Message != "" {
				line += ": " + r.Message
			}
			switch r.Status {
			case CheckError:
				p.Error("%s", line)
			case CheckWarning:
				p.Warn("%s", line)
			default:
				p.Println(line)
			}

			if (r.Status == CheckError || r.Status == CheckWarning) && r.Fix != "" && verbose {
				p.Hint("      -> %s", r.Fix)
			}
		}

		p.Println()
		switch {
		case hasErrors:
			p.Println("Some checks failed. Run with --fix for suggested fixes.")
		case hasWarnings:
			p.Println("All critical checks passed with some warnings.")
		default:
			p.Success("All checks passed!")
		}
	})

	if writeErr != nil {
		return writeErr
	}
	if hasErrors {
		return ErrDiagnosticsFailed
	}
	return nil
}

func (cli *CLI) runDiagnostics(ctx context.Context) []CheckResult {
	var results []CheckResult

	// Check 1: Configuration file
	results = append(results, cli.checkConfigFile())

	// Check 2: SSH directory
	results = append(results, cli.checkSSHDir())

	// Check 3: Profiles
	results = append(results, cli.checkProfiles()...)

	// Check 4: External tools
	results = append(results, cli.checkBinary(ctx, "ssh-keygen", cli.Config.Keygen.Binary, nil))
	results = append(results, cli.checkBinary(ctx, "git", cli.Config.Git.Binary, []string{"--version"}))

	// Check 5: Marker and installed key
	results = append(results, cli.checkMarker()...)

	// Check 6: Installed private key permissions
	results = append(results, cli.checkLiveKeyPermissions()...)

	return results
}

func (cli *CLI) checkConfigFile() CheckResult {
	path := cli.Config.FilePath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckOK,
			Message: "not found, using defaults",
		}
	}

	if err := cli.Config.Validate(); err != nil {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckError,
			Message: fmt.Sprintf("invalid: %v", err),
			Fix:     fmt.Sprintf("Edit %s", path),
		}
	}

	return CheckResult{
		Name:    "Configuration file",
		Status:  CheckOK,
		Message: path,
	}
}

func (cli *CLI) checkSSHDir() CheckResult {
	dir := cli.Paths.SSHDir

	info, err := os.Stat(dir)
	if err != nil {
		return CheckResult{
			Name:    "SSH directory",
			Status:  CheckError,
			Message: fmt.Sprintf("cannot access %s: %v", dir, err),
			Fix:     fmt.Sprintf("mkdir -m 700 %s", dir),
		}
	}

	if runtime.GOOS != "windows" && info.Mode().Perm()&0077 != 0 {
		return CheckResult{
			Name:    "SSH directory",
			Status:  CheckWarning,
			Message: fmt.Sprintf("%s has permissions %04o, expected 0700", dir, info.Mode().Perm()),
			Fix:     fmt.Sprintf("chmod 700 %s", dir),
		}
	}

	return CheckResult{
		Name:    "SSH directory",
		Status:  CheckOK,
		Message: dir,
	}
}

func (cli *CLI) checkProfiles() []CheckResult {
	names, err := cli.Store.List()
	if err != nil {
		return []CheckResult{{
			Name:    "Profiles",
			Status:  CheckError,
			Message: fmt.Sprintf("cannot read %s: %v", cli.Paths.ProfilesDir, err),
		}}
	}

	if len(names) == 0 {
		return []CheckResult{{
			Name:    "Profiles",
			Status:  CheckWarning,
			Message: fmt.Sprintf("no profiles in %s", cli.Paths.ProfilesDir),
			Fix:     "Run 'gssh add <profile>' or 'gssh list' to import existing keys",
		}}
	}

	results := []CheckResult{{
		Name:    "Profiles",
		Status:  CheckOK,
		Message: fmt.Sprintf("%d found in %s", len(names), cli.Paths.ProfilesDir),
	}}
	for _, name := range names {
		results = append(results, cli.checkProfile(name))
	}
	return results
}

func (cli *CLI) checkProfile(name string) CheckResult {
	checkName := fmt.Sprintf("Profile '%s'", name)
	dir := cli.Store.Dir(name)

	kp, err := keypair.Resolve(dir)
	if err != nil {
		return CheckResult{Name: checkName, Status: CheckError, Message: err.Error()}
	}
	if kp == nil {
		return CheckResult{
			Name:    checkName,
			Status:  CheckError,
			Message: "no id_ed25519 or id_rsa",
			Fix:     fmt.Sprintf("Add a key to %s or run 'gssh remove %s'", dir, name),
		}
	}

	var problems []string
	fix := ""
	var fp string
	if !kp.HasPublic() {
		problems = append(problems, "public key missing")
		fix = fmt.Sprintf("ssh-keygen -y -f %s > %s", kp.PrivPath, kp.PubPath)
	} else if pub, err := kp.ReadPublic(); err != nil {
		problems = append(problems, fmt.Sprintf("public key unreadable: %v", err))
	} else if fp, err = keypair.Fingerprint(pub); err != nil {
		problems = append(problems, "public key could not be parsed")
		fix = fmt.Sprintf("ssh-keygen -y -f %s > %s", kp.PrivPath, kp.PubPath)
	} else if keyType, err := keypair.PublicKeyType(pub); err == nil && !kp.Kind.Matches(keyType) {
		problems = append(problems, fmt.Sprintf("%s holds a %s key", filepath.Base(kp.PubPath), keyType))
		fix = fmt.Sprintf("ssh-keygen -y -f %s > %s", kp.PrivPath, kp.PubPath)
	}

	author, err := cli.Store.Author(name)
	switch {
	case err != nil:
		problems = append(problems, fmt.Sprintf("%s unreadable: %v", gitauthor.FileName, err))
	case author == nil:
		problems = append(problems, "no git author")
		if fix == "" {
			fix = fmt.Sprintf("echo 'Name <email>' > %s", filepath.Join(dir, gitauthor.FileName))
		}
	}

	if len(problems) > 0 {
		return CheckResult{
			Name:    checkName,
			Status:  CheckWarning,
			Message: strings.Join(problems, ", "),
			Fix:     fix,
		}
	}

	return CheckResult{
		Name:    checkName,
		Status:  CheckOK,
		Message: fmt.Sprintf("%s %s, %s", kp.Kind, fp, author),
	}
}

func (cli *CLI) checkBinary(ctx context.Context, label, binary string, versionArgs []string) CheckResult {
	checkName := fmt.Sprintf("%s binary", label)

	path, err := cli.runner.LookPath(binary)
	if err != nil {
		return CheckResult{
			Name:    checkName,
			Status:  CheckError,
			Message: fmt.Sprintf("'%s' not found in PATH", binary),
			Fix:     fmt.Sprintf("Install %s or set its binary in %s", label, cli.Config.FilePath()),
		}
	}

	if versionArgs == nil {
		return CheckResult{Name: checkName, Status: CheckOK, Message: path}
	}

	out, err := runner.Exec(ctx, cli.runner, nil, binary, versionArgs...)
	if err != nil {
		return CheckResult{
			Name:    checkName,
			Status:  CheckWarning,
			Message: fmt.Sprintf("found at %s but failed to run: %v", path, err),
		}
	}

	return CheckResult{
		Name:    checkName,
		Status:  CheckOK,
		Message: fmt.Sprintf("%s (%s)", path, strings.SplitN(out, "\n", 2)[0]),
	}
}

// checkMarker reports a marker naming an unknown profile and a marker that
// disagrees with the installed public key.
func (cli *CLI) checkMarker() []CheckResult {
	marker, err := cli.Store.ReadMarker()
	if err != nil {
		return []CheckResult{{Name: "Active marker", Status: CheckError, Message: err.Error()}}
	}

	detected, err := cli.Store.DetectFromPublicKey()
	if err != nil {
		return []CheckResult{{Name: "Active marker", Status: CheckError, Message: err.Error()}}
	}

	if marker == "" {
		if detected.Found() {
			return []CheckResult{{
				Name:    "Active marker",
				Status:  CheckWarning,
				Message: fmt.Sprintf("not set, installed key belongs to '%s'", detected.Name),
				Fix:     fmt.Sprintf("Run 'gssh use %s'", detected.Name),
			}}
		}
		return []CheckResult{{Name: "Active marker", Status: CheckSkipped, Message: "no active profile"}}
	}

	exists, err := cli.Store.Exists(marker)
	if err != nil {
		return []CheckResult{{Name: "Active marker", Status: CheckError, Message: err.Error()}}
	}
	if !exists {
		return []CheckResult{{
			Name:    "Active marker",
			Status:  CheckError,
			Message: fmt.Sprintf("names unknown profile '%s'", marker),
			Fix:     "Run 'gssh use <profile>' to select an existing profile",
		}}
	}

	results := []CheckResult{{Name: "Active marker", Status: CheckOK, Message: marker}}

	drift := CheckResult{Name: "Installed key", Status: CheckOK, Message: fmt.Sprintf("matches '%s'", marker)}
	switch {
	case detected.Found() && detected.Name != marker:
		drift = CheckResult{
			Name:    "Installed key",
			Status:  CheckWarning,
			Message: fmt.Sprintf("belongs to '%s' but the marker says '%s'", detected.Name, marker),
			Fix:     fmt.Sprintf("Run 'gssh use %s'", marker),
		}
	case !detected.Found():
		kp, err := keypair.Resolve(cli.Store.Dir(marker))
		if err != nil || kp == nil || !kp.HasPublic() {
			drift = CheckResult{Name: "Installed key", Status: CheckSkipped, Message: fmt.Sprintf("'%s' has no public key to compare", marker)}
			break
		}
		drift = CheckResult{
			Name:    "Installed key",
			Status:  CheckWarning,
			Message: fmt.Sprintf("does not match profile '%s'", marker),
			Fix:     fmt.Sprintf("Run 'gssh use %s'", marker),
		}
	}

	return append(results, drift)
}

func (cli *CLI) checkLiveKeyPermissions() []CheckResult {
	var results []CheckResult

	for _, k := range keypair.Resolvable {
		path := filepath.Join(cli.Paths.SSHDir, k.Basename())
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		checkName := fmt.Sprintf("Private key %s", k.Basename())
		if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
			results = append(results, CheckResult{
				Name:    checkName,
				Status:  CheckWarning,
				Message: fmt.Sprintf("permissions %04o, expected 0600", info.Mode().Perm()),
				Fix:     fmt.Sprintf("chmod 600 %s", path),
			})
			continue
		}
		results = append(results, CheckResult{Name: checkName, Status: CheckOK, Message: path})
	}

	if len(results) == 0 {
		results = append(results, CheckResult{
			Name:    "Private key",
			Status:  CheckSkipped,
			Message: fmt.Sprintf("none installed in %s", cli.Paths.SSHDir),
		})
	}
	return results
}
