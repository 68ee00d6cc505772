// Package prompt reads line-oriented answers from the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter asks the user questions. Answers are trimmed.
type Prompter interface {
	// Prompt prints question and returns the answer line.
	Prompt(question string) (string, error)
	// Confirm asks a yes/no question. An empty answer returns defaultYes.
	Confirm(question string, defaultYes bool) (bool, error)
}

// Terminal is a Prompter reading lines from an input stream.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter reading from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Prompt implements Prompter. End of input counts as an empty answer.
func (t *Terminal) Prompt(question string) (string, error) {
	if _, err := fmt.Fprint(t.out, question); err != nil {
		return "", err
	}

	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		// Keep the next output on its own line
		_, _ = fmt.Fprintln(t.out)
	}
	return strings.TrimSpace(line), nil
}

// Confirm implements Prompter.
func (t *Terminal) Confirm(question string, defaultYes bool) (bool, error) {
	answer, err := t.Prompt(question + confirmSuffix(defaultYes))
	if err != nil {
		return false, err
	}
	return ParseConfirm(answer, defaultYes), nil
}

func confirmSuffix(defaultYes bool) string {
	if defaultYes {
		return " (Y/n): "
	}
	return " (y/N): "
}

// ParseConfirm interprets a yes/no answer. Only "y" and "yes" (any case)
// count as yes; an empty answer returns defaultYes.
func ParseConfirm(answer string, defaultYes bool) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return defaultYes
	}
	return answer == "y" || answer == "yes"
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
