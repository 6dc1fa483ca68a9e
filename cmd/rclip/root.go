package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"rclip/internal/adapter/configfile"
	"rclip/internal/adapter/listener"
	"rclip/internal/adapter/logger"
	"rclip/internal/adapter/metrics"
	"rclip/internal/adapter/platform"
	"rclip/internal/adapter/spawner"
	"rclip/internal/app"
	"rclip/internal/domain"
)

// rootOptions holds the raw flag values. Empty values fall through to the
// config file and then to built-in defaults.
type rootOptions struct {
	copyCommand     string
	pasteCommand    string
	address         string
	configPath      string
	shell           string
	backlog         int
	transientErrors []string
	metricsAddress  string
	logLevel        string
	logFormat       string
}

var opts rootOptions

var rootCmd = &cobra.Command{
	Use:   "rclip [flags] <copy port> <paste port>",
	Short: "Share the desktop clipboard over TCP",
	Long: `rclip bridges the clipboard to the network.

Data sent to the copy port becomes the new clipboard contents. Connecting to
the paste port streams back the current clipboard contents. Every connection
runs its own clipboard command through the shell, so commands may be
pipelines.

Under Wayland the commands default to wl-copy/wl-paste, under X11 to xclip.
There is no authentication or encryption: only use rclip on trusted networks.

Exit status: 1 for configuration errors, 2 when a port cannot be bound,
3 for runtime failures.`,
	Example: `  # Share the Wayland/X11 clipboard
  rclip 9001 9002

  # Use a file as the clipboard
  rclip -c 'cat > /tmp/clip' -p 'cat /tmp/clip' 9001 9002

  # From another machine
  echo hello | nc -N host 9001
  nc host 9002 </dev/null`,
	// Argument count is checked by resolve so it reports a ConfigError.
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&opts.copyCommand, "copy", "c", "", "when copying, use this command instead of wl-clipboard/xclip")
	f.StringVarP(&opts.pasteCommand, "paste", "p", "", "when pasting, use this command instead of wl-clipboard/xclip")
	f.StringVarP(&opts.address, "address", "a", "", "bind to this IPv4 address instead of all addresses (default 0.0.0.0)")
	f.StringVar(&opts.configPath, "config", "", "config file (default $RCLIP_CONFIG or $XDG_CONFIG_HOME/rclip/config.yaml)")
	f.StringVar(&opts.shell, "shell", "", "shell used to run the commands (default /bin/sh)")
	f.IntVar(&opts.backlog, "backlog", 0, "listen queue length (default 4)")
	f.StringSliceVar(&opts.transientErrors, "transient-errors", nil, "accept errors to retry, as errno names (default ENETDOWN,EPROTO,...)")
	f.StringVar(&opts.metricsAddress, "metrics-address", "", "serve Prometheus metrics on this address (disabled when empty)")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default info)")
	f.StringVar(&opts.logFormat, "log-format", "", "console or json (default console)")
}

func runServe(cmd *cobra.Command, args []string) error {
	plat := platform.New()

	var file configfile.File
	if path, explicit := plat.ResolveConfigPath(opts.configPath); path != "" {
		var err error
		file, err = configfile.Load(path, explicit)
		if err != nil {
			return &domain.ConfigError{Field: "config file", Err: err}
		}
	}

	if len(args) == 0 && !anyFlagChanged(cmd) && file.CopyPort == 0 && file.PastePort == 0 {
		return cmd.Help()
	}

	copyDefault, pasteDefault := plat.DefaultCommands()
	s, err := resolve(opts, args, file, copyDefault, pasteDefault)
	if err != nil {
		return err
	}

	log, err := logger.NewStderr(s.log)
	if err != nil {
		return &domain.ConfigError{Field: "logging", Err: err}
	}

	var (
		recorder domain.Recorder = domain.NopRecorder{}
		registry *prometheus.Registry
	)
	if s.metricsAddress != "" {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewRecorder(registry)
	}

	cfg := s.cfg
	svc := app.NewService(
		listener.NewBinder(cfg.Backlog),
		listener.Multiplexer{},
		listener.NewAcceptor(cfg.TransientErrors, log, recorder),
		spawner.New(spawner.Commands{
			Shell: cfg.Shell,
			Copy:  cfg.CopyCommand,
			Paste: cfg.PasteCommand,
		}, log, recorder),
		log,
	)

	endpoints, err := svc.Listen(cfg)
	if err != nil {
		return err
	}

	if registry != nil {
		srv, err := metrics.Listen(s.metricsAddress, metrics.NewHandler(registry), log)
		if err != nil {
			return err
		}
		srv.Serve()
	}

	return svc.Serve(endpoints)
}

// anyFlagChanged reports whether any flag was given on the command line.
func anyFlagChanged(cmd *cobra.Command) bool {
	changed := false
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		changed = changed || f.Changed
	})
	return changed
}
