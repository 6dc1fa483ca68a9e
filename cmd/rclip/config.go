package main

import (
	"errors"
	"fmt"

	"rclip/internal/adapter/configfile"
	"rclip/internal/adapter/listener"
	"rclip/internal/adapter/logger"
	"rclip/internal/adapter/spawner"
	"rclip/internal/app"
	"rclip/internal/domain"
)

const defaultAddress = "0.0.0.0"

// settings is the fully resolved startup configuration.
type settings struct {
	cfg            app.Config
	log            logger.Options
	metricsAddress string
}

// resolve merges flags, positional ports, the config file and the
// environment defaults, in that order of priority, and validates the result.
func resolve(o rootOptions, args []string, file configfile.File, copyDefault, pasteDefault string) (settings, error) {
	var s settings

	switch len(args) {
	case 2:
		copyPort, err := app.ParsePort(args[0])
		if err != nil {
			return s, &domain.ConfigError{Field: "copy port", Err: err}
		}
		pastePort, err := app.ParsePort(args[1])
		if err != nil {
			return s, &domain.ConfigError{Field: "paste port", Err: err}
		}
		s.cfg.CopyPort, s.cfg.PastePort = copyPort, pastePort
	case 0:
		if file.CopyPort == 0 || file.PastePort == 0 {
			return s, &domain.ConfigError{Err: errors.New("missing arguments: <copy port> <paste port>")}
		}
		s.cfg.CopyPort, s.cfg.PastePort = file.CopyPort, file.PastePort
	default:
		return s, &domain.ConfigError{Err: fmt.Errorf("expected <copy port> <paste port>, got %d arguments", len(args))}
	}

	addr, err := app.ParseAddress(first(o.address, file.Address, defaultAddress))
	if err != nil {
		return s, &domain.ConfigError{Field: "address", Err: err}
	}
	s.cfg.Address = addr

	s.cfg.CopyCommand = first(o.copyCommand, file.CopyCommand, copyDefault)
	s.cfg.PasteCommand = first(o.pasteCommand, file.PasteCommand, pasteDefault)
	s.cfg.Shell = first(o.shell, file.Shell, spawner.DefaultShell)

	switch {
	case o.backlog != 0:
		s.cfg.Backlog = o.backlog
	case file.Backlog != 0:
		s.cfg.Backlog = file.Backlog
	default:
		s.cfg.Backlog = listener.DefaultBacklog
	}

	names := listener.DefaultTransientErrors
	switch {
	case o.transientErrors != nil:
		names = o.transientErrors
	case file.TransientErrors != nil:
		names = file.TransientErrors
	}
	transient, err := listener.ParseErrnos(names)
	if err != nil {
		return s, &domain.ConfigError{Field: "transient errors", Err: err}
	}
	s.cfg.TransientErrors = transient

	s.log = logger.Options{
		Level:  first(o.logLevel, file.LogLevel),
		Format: first(o.logFormat, file.LogFormat),
	}
	s.metricsAddress = first(o.metricsAddress, file.MetricsAddress)

	if err := s.cfg.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// first returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
