// Package runner abstracts execution of the external CSP binaries so the
// tool wrappers can run them locally or on a remote signing host.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner executes a command and returns its captured stdout and stderr.
//
// A non-zero exit status is not reported through err: the CSP tools signal
// their outcome through result codes on stdout and messages on stderr, and
// the wrappers parse those regardless of the exit status. err is reserved
// for failures to run the command at all (binary missing, context
// cancelled, transport errors).
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	log.Debug().
		Str("cmd", name).
		Strs("args", args).
		Dur("took", time.Since(start)).
		Int("stdout_bytes", stdout.Len()).
		Int("stderr_bytes", stderr.Len()).
		Err(err).
		Msg("exec")

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Tool-level failure, reported through its output.
			return stdout.Bytes(), stderr.Bytes(), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.Bytes(), stderr.Bytes(), ctxErr
		}
		return stdout.Bytes(), stderr.Bytes(), err
	}

	return stdout.Bytes(), stderr.Bytes(), nil
}
