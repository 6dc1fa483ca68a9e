//go:build unix

package spawner

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"rclip/internal/domain"
)

// DefaultShell runs the configured command lines.
const DefaultShell = "/bin/sh"

// Commands are the shell command lines run for each direction.
type Commands struct {
	Shell string
	Copy  string
	Paste string
}

// Spawner starts one clipboard command per accepted connection.
type Spawner struct {
	commands Commands
	logger   domain.Logger
	recorder domain.Recorder
}

// New creates a spawner for the given commands.
func New(commands Commands, logger domain.Logger, recorder domain.Recorder) *Spawner {
	if commands.Shell == "" {
		commands.Shell = DefaultShell
	}
	if recorder == nil {
		recorder = domain.NopRecorder{}
	}
	return &Spawner{commands: commands, logger: logger, recorder: recorder}
}

// Dispatch starts the command for conn's direction with the connection as
// its stdin (copy) or stdout (paste) and the null device everywhere else.
// It does not wait for the command. conn.File is closed before returning.
//
// A command that cannot be executed only affects its own connection. An
// error is returned when the process cannot be created at all.
func (s *Spawner) Dispatch(conn domain.Conn) error {
	defer conn.File.Close()

	cmd := exec.Command(s.commands.Shell, "-c", s.commandLine(conn.Direction))
	switch conn.Direction {
	case domain.Copy:
		s.shutdown(conn, unix.SHUT_WR)
		cmd.Stdin = conn.File
	case domain.Paste:
		s.shutdown(conn, unix.SHUT_RD)
		cmd.Stdout = conn.File
	default:
		return fmt.Errorf("dispatch: unknown direction %d", conn.Direction)
	}
	// Nil streams are connected to os.DevNull by os/exec.
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		s.recorder.SpawnFailed(conn.Direction)
		if isExecFailure(err) {
			s.logger.Warn("clipboard command could not be executed",
				"direction", conn.Direction, "remote", conn.Remote, "err", err)
			return nil
		}
		return fmt.Errorf("start %s command: %w", conn.Direction, err)
	}

	s.recorder.Spawned(conn.Direction)
	s.logger.Debug("clipboard command started",
		"direction", conn.Direction, "remote", conn.Remote, "pid", cmd.Process.Pid)

	go s.reap(conn.Direction, cmd)
	return nil
}

func (s *Spawner) commandLine(dir domain.Direction) string {
	if dir == domain.Paste {
		return s.commands.Paste
	}
	return s.commands.Copy
}

// shutdown closes the unused half of the connection. The peer may already be
// gone, which is not an error worth reporting.
func (s *Spawner) shutdown(conn domain.Conn, how int) {
	raw, err := conn.File.SyscallConn()
	if err != nil {
		s.logger.Debug("shutdown skipped", "direction", conn.Direction, "err", err)
		return
	}
	var shutErr error
	if err := raw.Control(func(fd uintptr) {
		shutErr = unix.Shutdown(int(fd), how)
	}); err != nil {
		shutErr = err
	}
	if shutErr != nil {
		s.logger.Debug("shutdown failed", "direction", conn.Direction, "remote", conn.Remote, "err", shutErr)
	}
}

// reap waits for the command so it does not linger as a zombie. The exit
// status is only logged and recorded.
func (s *Spawner) reap(dir domain.Direction, cmd *exec.Cmd) {
	err := cmd.Wait()
	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		s.logger.Error("wait for clipboard command failed", "direction", dir, "pid", cmd.Process.Pid, "err", err)
	}

	s.recorder.Exited(dir, code)
	s.logger.Debug("clipboard command exited", "direction", dir, "pid", cmd.Process.Pid, "code", code)
}

// isExecFailure reports whether a start error came from executing the shell
// rather than from creating the process. exec.Cmd.Start merges both stages
// into one error, so this is a heuristic over errnos: EPERM, for one, can
// also come from the child's Setpgid before exec. Either way the failure
// stays with its connection.
func isExecFailure(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case unix.ENOENT, unix.EACCES, unix.EPERM, unix.ENOEXEC, unix.ENOTDIR,
		unix.ELOOP, unix.ENAMETOOLONG, unix.EISDIR, unix.ETXTBSY:
		return true
	}
	return false
}

var _ domain.Dispatcher = (*Spawner)(nil)

