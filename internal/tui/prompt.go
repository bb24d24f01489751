// Package tui holds the interactive terminal prompts.
package tui

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when input is needed but cannot be prompted.
var ErrNotInteractive = stderrors.New("input required but the terminal is not interactive")

// Credentials is a username and password pair.
type Credentials struct {
	Username string
	Password string
}

// Complete reports whether both fields are set.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.Username) != "" && c.Password != ""
}

// Prompter asks the user for input. Commands depend on it so tests can
// script answers.
type Prompter interface {
	Credentials(initial Credentials) (Credentials, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// HuhPrompter prompts with huh forms on the controlling terminal.
type HuhPrompter struct{}

// Credentials asks for the fields missing from initial. The password is
// never echoed.
func (HuhPrompter) Credentials(initial Credentials) (Credentials, error) {
	if initial.Complete() {
		return initial, nil
	}
	if !ShouldPrompt() {
		return initial, ErrNotInteractive
	}

	out := initial
	var fields []huh.Field
	if strings.TrimSpace(out.Username) == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&out.Username).
			Validate(required("username")))
	}
	if out.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&out.Password).
			Validate(required("password")))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return initial, fmt.Errorf("prompt failed: %w", err)
	}
	return out, nil
}

// Confirm displays a yes/no confirmation prompt
func (HuhPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if !ShouldPrompt() {
		return false, ErrNotInteractive
	}

	confirmed := defaultValue
	form := huh.NewForm(huh.NewGroup(huh.NewConfirm().
		Title(message).
		Value(&confirmed)))

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}
	return IsInteractive()
}

var ciEnvVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_URL",
	"TRAVIS",
	"CIRCLECI",
	"BUILDKITE",
}
