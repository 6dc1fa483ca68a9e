package main

import (
	"errors"
	"fmt"
	"os"

	"rclip/internal/domain"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "rclip: %v\n", err)
	var cfgErr *domain.ConfigError
	if errors.As(err, &cfgErr) {
		fmt.Fprintln(os.Stderr, `Run "rclip --help" for usage.`)
	}
	os.Exit(domain.ExitCode(err))
}
