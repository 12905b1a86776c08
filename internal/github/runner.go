package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner запускает gh с переданными аргументами и возвращает stdout
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// CLIRunner запускает настоящий gh через os/exec
type CLIRunner struct {
	path string
	env  []string
}

// NewCLIRunner находит gh в PATH. Отсутствие утилиты возвращает ErrToolNotFound.
func NewCLIRunner(name, token string) (*CLIRunner, error) {
	if name == "" {
		name = "gh"
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrToolNotFound, name, err)
	}

	env := append(os.Environ(), "GH_PROMPT_DISABLED=1", "NO_COLOR=1")
	if token != "" {
		env = append(env, "GH_TOKEN="+token)
	}

	return &CLIRunner{path: path, env: env}, nil
}

// Path возвращает полный путь к gh
func (r *CLIRunner) Path() string {
	return r.path
}

// Run выполняет gh. При ненулевом коде выхода stdout все равно возвращается,
// так как gh api graphql печатает частичный ответ вместе с ошибками.
func (r *CLIRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Env = r.env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("executing gh %s: %w", commandName(args), err)
		}

		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if isAuthFailure(msg) {
			return stdout.Bytes(), &AuthError{Message: msg}
		}
		return stdout.Bytes(), &CommandError{Args: args, ExitCode: exitErr.ExitCode(), Stderr: msg}
	}

	return stdout.Bytes(), nil
}
