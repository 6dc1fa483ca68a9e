package domain

import (
	"errors"
	"fmt"
)

// Process exit statuses for the three fatal error classes.
const (
	ExitConfig  = 1
	ExitSetup   = 2
	ExitRuntime = 3
)

// ConfigError reports an invalid or missing configuration value.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// BindStage names the step of endpoint setup that failed.
type BindStage string

const (
	StageSocket BindStage = "socket"
	StageBind   BindStage = "bind"
	StageListen BindStage = "listen"
)

// BindError reports a failure to set up a listening socket. Endpoint names
// which one ("copy", "paste" or "metrics").
type BindError struct {
	Stage    BindStage
	Endpoint string
	Address  string
	Err      error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("%s %s endpoint %s: %v", e.Stage, e.Endpoint, e.Address, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// RuntimeError reports an unrecoverable failure of the main loop.
type RuntimeError struct {
	Op  string
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// ExitCode maps an error to the process exit status of its class.
func ExitCode(err error) int {
	var (
		bindErr    *BindError
		runtimeErr *RuntimeError
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &bindErr):
		return ExitSetup
	case errors.As(err, &runtimeErr):
		return ExitRuntime
	default:
		return ExitConfig
	}
}
