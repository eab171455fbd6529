package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/temirov/gfc/internal/execshell"
)

const (
	gitFetchSubcommandConstant    = "fetch"
	defaultSettleDelayConstant    = 150 * time.Millisecond
	gitExecutorMissingMessageText = "git executor not configured"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageText)

// CommandRunner is the boundary between the checkout logic and git.
type CommandRunner interface {
	// Fetch updates remote-tracking branches for the named remote.
	Fetch(executionContext context.Context, remoteName string) error
	// Run executes git with the arguments and returns trimmed standard output.
	Run(executionContext context.Context, arguments ...string) (string, error)
}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// WaitFunc blocks for the duration or until the context is done.
type WaitFunc func(executionContext context.Context, duration time.Duration) error

// GitCommandRunner implements CommandRunner on top of a GitExecutor and pauses after every command.
type GitCommandRunner struct {
	executor         GitExecutor
	workingDirectory string
	settleDelay      time.Duration
	wait             WaitFunc
}

// RunnerOption customizes a GitCommandRunner.
type RunnerOption func(*GitCommandRunner)

// WithWorkingDirectory runs git inside the directory instead of the process working directory.
func WithWorkingDirectory(workingDirectory string) RunnerOption {
	return func(runner *GitCommandRunner) {
		runner.workingDirectory = strings.TrimSpace(workingDirectory)
	}
}

// WithSettleDelay overrides the pause applied after every command. Zero disables it.
func WithSettleDelay(settleDelay time.Duration) RunnerOption {
	return func(runner *GitCommandRunner) {
		if settleDelay < 0 {
			settleDelay = 0
		}
		runner.settleDelay = settleDelay
	}
}

// WithWaitFunc replaces the settle wait implementation.
func WithWaitFunc(wait WaitFunc) RunnerOption {
	return func(runner *GitCommandRunner) {
		if wait != nil {
			runner.wait = wait
		}
	}
}

// NewGitCommandRunner builds a runner with a 150ms settle delay unless overridden.
func NewGitCommandRunner(executor GitExecutor, options ...RunnerOption) (*GitCommandRunner, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	runner := &GitCommandRunner{
		executor:    executor,
		settleDelay: defaultSettleDelayConstant,
		wait:        sleepWithContext,
	}
	for _, option := range options {
		option(runner)
	}
	return runner, nil
}

// Fetch runs `git fetch <remote>` with the terminal attached so credential prompts stay usable.
func (runner *GitCommandRunner) Fetch(executionContext context.Context, remoteName string) error {
	_, executionError := runner.execute(executionContext, execshell.CommandDetails{
		Arguments:           []string{gitFetchSubcommandConstant, remoteName},
		WorkingDirectory:    runner.workingDirectory,
		PassthroughTerminal: true,
	})
	return executionError
}

// Run executes `git <arguments>` and returns its trimmed standard output.
func (runner *GitCommandRunner) Run(executionContext context.Context, arguments ...string) (string, error) {
	result, executionError := runner.execute(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: runner.workingDirectory,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

func (runner *GitCommandRunner) execute(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	result, executionError := runner.executor.ExecuteGit(executionContext, details)
	if runner.settleDelay > 0 {
		if waitError := runner.wait(executionContext, runner.settleDelay); waitError != nil && executionError == nil {
			return result, waitError
		}
	}
	return result, executionError
}

func sleepWithContext(executionContext context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-executionContext.Done():
		return executionContext.Err()
	case <-timer.C:
		return nil
	}
}
