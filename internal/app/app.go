package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"procnet-exporter/internal/collector"
	"procnet-exporter/internal/config"
	"procnet-exporter/internal/logging"
	"procnet-exporter/internal/procfs"
	"procnet-exporter/internal/procnet"
	"procnet-exporter/internal/sysctl"
	"procnet-exporter/internal/web"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Run wires the application together. In list mode it prints the selected
// connection tables and returns; with -serve it blocks until SIGINT/SIGTERM.
func Run(cfg config.Config, version string) int {
	return run(cfg, version, os.Stdout, os.Stderr)
}

func run(cfg config.Config, version string, stdout, stderr io.Writer) int {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logging.Info
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		format = logging.Logfmt
	}
	log := logging.New(stderr, level, format)

	if cfg.ShowHelp {
		config.Usage(stdout)
		return ExitOK
	}
	if cfg.ShowVersion {
		log.Info("version", "version", version)
		return ExitOK
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		return ExitUsage
	}
	sel, err := cfg.Selection()
	if err != nil {
		log.Error("invalid configuration", "err", err)
		return ExitUsage
	}

	pfs := procfs.FS{Root: cfg.ProcfsPath}

	// Without explicit -mode flags, skip the IPv6 tables on hosts where
	// they cannot exist.
	if len(cfg.Modes) == 0 {
		sel.Modes = availableModes(pfs, sel.Modes, log)
	}

	if !cfg.Serve {
		if err := List(stdout, pfs, sel, cfg.Output); err != nil {
			log.Error("failed to list connections", "err", err)
			return ExitError
		}
		return ExitOK
	}

	return serve(cfg, version, pfs, sel, log)
}

func availableModes(pfs procfs.FS, modes []procnet.Mode, log *logging.Logger) []procnet.Mode {
	disabled, err := sysctl.IPv6Disabled(pfs)
	if err != nil {
		log.Warn("failed to read disable_ipv6", "err", err)
		return modes
	}
	if !disabled {
		return modes
	}

	log.Debug("IPv6 is disabled; skipping tcp6 and udp6 tables")
	out := make([]procnet.Mode, 0, len(modes))
	for _, m := range modes {
		if !m.IsIPv6() {
			out = append(out, m)
		}
	}
	return out
}

func serve(cfg config.Config, version string, pfs procfs.FS, sel config.Selection, log *logging.Logger) int {
	if sel.RemoteAddress.IsValid() || sel.RemotePort != nil {
		log.Warn("remote address and port filters are ignored by the exporter")
	}

	// Prometheus registry and exporter metrics control.
	reg := prometheus.NewRegistry()
	if !cfg.WebDisableExporterMetrics {
		reg.MustRegister(
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
			prometheus.NewGoCollector(),
		)
	}

	filter := collector.Filter{LocalAddress: sel.LocalAddress, LocalPort: sel.LocalPort}
	reg.MustRegister(collector.NewSocketCollector(pfs, sel.Modes, filter, log.With("component", "collector")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info("starting procnet exporter", "version", version, "procfs", cfg.ProcfsPath, "modes", modeList(sel.Modes))

	srv := &web.Server{
		Logger:            log.With("component", "web"),
		Registry:          reg,
		TelemetryPath:     cfg.WebTelemetryPath,
		ListenAddrs:       cfg.WebListenAddresses,
		MaxRequests:       cfg.WebMaxRequests,
		DisableExpMetrics: cfg.WebDisableExporterMetrics,
		Version:           version,
	}

	// Run HTTP server (blocks).
	if err := srv.Start(ctx); err != nil {
		log.Error("http server error", "err", err)
		return ExitError
	}

	// Give background goroutines a tiny moment to flush logs (best-effort).
	time.Sleep(10 * time.Millisecond)
	return ExitOK
}
