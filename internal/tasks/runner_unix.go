//go:build linux || darwin || freebsd || netbsd || openbsd

package tasks

import (
	"os/exec"
	"syscall"
)

// configureProcess starts the job in its own process group so that a kill
// also reaches anything it spawned.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
