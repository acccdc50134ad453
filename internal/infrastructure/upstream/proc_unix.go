//go:build unix

package upstream

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the upstream as the leader of its own process
// group so the timeout kill also reaches anything it spawned
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
