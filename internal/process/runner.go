// Package process issues the shell commands that start and stop the external
// module processes of the active mode.
package process

import (
	"os/exec"

	"github.com/keybox9823/apollo/pkg/logger"
)

// Runner executes an opaque shell command on behalf of the supervisor.
// Implementations must not block longer than the command itself: start
// commands background themselves and stop commands return promptly.
type Runner interface {
	Run(command string) error
}

// ShellRunner runs commands through the system shell. Failures are logged and
// returned, but callers treat them as best-effort: a module that failed to
// start simply shows up as not running once the monitor feed reports it.
type ShellRunner struct{}

// NewShellRunner creates a ShellRunner.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{}
}

// Run executes the command with `sh -c` and waits for the shell to exit,
// logging the outcome by exit code.
func (r *ShellRunner) Run(command string) error {
	cmd := exec.Command("sh", "-c", command)
	if err := cmd.Run(); err != nil {
		logger.Log.Error("Command failed", "cmd", command, "err", err)
		return err
	}
	logger.Log.Info("Command succeeded", "cmd", command)
	return nil
}
