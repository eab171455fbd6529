// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with zap logging via ShellExecutor, exposes OSCommandRunner
// for default process execution, and reports non-zero exits as
// CommandFailedError so callers can branch on the exit code.
package execshell
