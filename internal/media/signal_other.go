//go:build !unix

package media

import (
	"errors"
	"os"
)

var errSuspendUnsupported = errors.New("suspend not supported")

func suspend(*os.Process) error { return errSuspendUnsupported }

func resume(*os.Process) error { return errSuspendUnsupported }
