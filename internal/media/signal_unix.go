//go:build unix

package media

import (
	"errors"
	"os"
	"syscall"
)

var errSuspendUnsupported = errors.New("suspend not supported")

func suspend(p *os.Process) error {
	return p.Signal(syscall.SIGSTOP)
}

func resume(p *os.Process) error {
	return p.Signal(syscall.SIGCONT)
}
