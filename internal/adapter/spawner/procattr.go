//go:build unix

package spawner

import "syscall"

// sysProcAttr puts the child in its own process group so a terminal SIGINT
// aimed at rclip does not reach clipboard commands still serving a client.
// No Pdeathsig: children outlive the listener.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}
