// Package executor abstracts external process execution so that scan
// invokers and version probes can be tested with a fake.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Executor runs an external binary with an argument vector and extra
// environment variables, returning captured stdout and stderr.
type Executor interface {
	Run(ctx context.Context, bin string, args []string, env []string) (stdout, stderr []byte, err error)
}

type systemExecutor struct{}

// System returns an Executor backed by os/exec. The child inherits the
// parent environment plus the supplied extra variables.
func System() Executor {
	return systemExecutor{}
}

func (systemExecutor) Run(ctx context.Context, bin string, args []string, env []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = append(os.Environ(), env...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(errBuf.String())
		if detail != "" {
			err = fmt.Errorf("%s %s: %w: %s", bin, strings.Join(args, " "), err, detail)
		}
		return outBuf.Bytes(), errBuf.Bytes(), err
	}
	return outBuf.Bytes(), errBuf.Bytes(), nil
}
