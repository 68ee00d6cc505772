package prompt

import (
	"errors"
	"fmt"
	"sync"
)

// ErrScriptExhausted is returned when a Scripted prompter runs out of answers.
var ErrScriptExhausted = errors.New("no scripted answer left")

// Scripted is a Prompter replaying canned answers, for tests.
type Scripted struct {
	mu        sync.Mutex
	answers   []string
	questions []string
}

// NewScripted creates a Prompter returning answers in order.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

// Questions returns every question asked so far.
func (s *Scripted) Questions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.questions...)
}

// Remaining returns the number of unused answers.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Prompt implements Prompter.
func (s *Scripted) Prompt(question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = append(s.questions, question)
	if len(s.answers) == 0 {
		return "", fmt.Errorf("%w for %q", ErrScriptExhausted, question)
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Confirm implements Prompter.
func (s *Scripted) Confirm(question string, defaultYes bool) (bool, error) {
	answer, err := s.Prompt(question + confirmSuffix(defaultYes))
	if err != nil {
		return false, err
	}
	return ParseConfirm(answer, defaultYes), nil
}
