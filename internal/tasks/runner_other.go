//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package tasks

import "os/exec"

// configureProcess keeps the exec defaults: only the direct child is killed.
func configureProcess(cmd *exec.Cmd) {}
