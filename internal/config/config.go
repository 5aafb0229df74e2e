package config

import (
	"flag"
	"io"
	"net/netip"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"procnet-exporter/internal/procnet"
)

// Config holds runtime configuration for both the list command and the
// exporter.
type Config struct {
	Serve      bool
	ProcfsPath string

	Modes         multiString
	LocalAddress  string
	RemoteAddress string
	LocalPort     string
	RemotePort    string
	Output        string

	WebTelemetryPath          string
	WebDisableExporterMetrics bool
	WebMaxRequests            int
	WebListenAddresses        multiString

	LogLevel  string
	LogFormat string

	ShowHelp    bool
	ShowVersion bool
}

// Output formats of the list command.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputDump  = "dump"
)

// Selection is the validated form of the mode, address and port flags.
type Selection struct {
	Modes         []procnet.Mode
	LocalAddress  netip.Addr
	RemoteAddress netip.Addr
	LocalPort     *uint32
	RemotePort    *uint32
}

// Criteria returns the filter criteria for one mode.
func (s Selection) Criteria(mode procnet.Mode) procnet.Criteria {
	return procnet.Criteria{
		Mode:          mode,
		LocalAddress:  s.LocalAddress,
		RemoteAddress: s.RemoteAddress,
		LocalPort:     s.LocalPort,
		RemotePort:    s.RemotePort,
	}
}

func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("procnet-exporter", flag.ContinueOnError)

	// Flag names of the exporter follow Prometheus exporter conventions.

	fs.BoolVar(&cfg.Serve, "serve", false, "Run the Prometheus exporter instead of printing the connection tables once.")
	fs.StringVar(&cfg.ProcfsPath, "path.procfs", "/proc", "Procfs mountpoint.")

	fs.Var(&cfg.Modes, "mode", "Connection table to read. Repeatable. One of: [tcp, udp, tcp6, udp6]. Default: all.")
	fs.StringVar(&cfg.LocalAddress, "local-address", "", "Only show sockets bound to this local address.")
	fs.StringVar(&cfg.RemoteAddress, "remote-address", "", "Only show sockets connected to this remote address (list only).")
	fs.StringVar(&cfg.LocalPort, "local-port", "", "Only show sockets with this local port.")
	fs.StringVar(&cfg.RemotePort, "remote-port", "", "Only show sockets with this remote port (list only).")
	fs.StringVar(&cfg.Output, "output", OutputTable, "Output format of the list command. One of: [table, json, dump]")

	fs.StringVar(&cfg.WebTelemetryPath, "web.telemetry-path", "/metrics", "Path under which to expose metrics.")
	fs.BoolVar(&cfg.WebDisableExporterMetrics, "web.disable-exporter-metrics", false, "Exclude metrics about the exporter itself (promhttp_*, process_*, go_*).")
	fs.IntVar(&cfg.WebMaxRequests, "web.max-requests", 40, "Maximum number of parallel scrape requests. Use 0 to disable.")
	fs.Var(&cfg.WebListenAddresses, "web.listen-address", "Addresses on which to expose metrics and web interface. Repeatable for multiple addresses. Examples: :9117 or [::1]:9117")

	fs.StringVar(&cfg.LogLevel, "log.level", "info", "Only log messages with the given severity or above. One of: [debug, info, warn, error]")
	fs.StringVar(&cfg.LogFormat, "log.format", "logfmt", "Output format of log messages. One of: [logfmt, json]")

	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help and exit.")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help and exit.")

	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show application version and exit.")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show application version and exit.")

	return fs
}

// Parse parses command line arguments (without the program name).
func Parse(args []string) (Config, error) {
	var cfg Config

	fs := newFlagSet(&cfg)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, errors.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if len(cfg.WebListenAddresses) == 0 {
		cfg.WebListenAddresses = append(cfg.WebListenAddresses, ":9117")
	}

	return cfg, nil
}

// Usage writes the flag documentation to w.
func Usage(w io.Writer) {
	fs := newFlagSet(&Config{})
	fs.SetOutput(w)
	io.WriteString(w, "Usage of procnet-exporter:\n")
	fs.PrintDefaults()
}

// Selection validates the mode, address and port flags.
func (c Config) Selection() (Selection, error) {
	var s Selection
	var err error

	seen := map[procnet.Mode]bool{}
	for _, v := range c.Modes {
		m, err := procnet.ParseMode(v)
		if err != nil {
			return Selection{}, err
		}
		if !seen[m] {
			seen[m] = true
			s.Modes = append(s.Modes, m)
		}
	}
	if len(s.Modes) == 0 {
		s.Modes = append(s.Modes, procnet.Modes...)
	}

	if s.LocalAddress, err = parseAddr("local-address", c.LocalAddress); err != nil {
		return Selection{}, err
	}
	if s.RemoteAddress, err = parseAddr("remote-address", c.RemoteAddress); err != nil {
		return Selection{}, err
	}
	if s.LocalPort, err = parsePort("local-port", c.LocalPort); err != nil {
		return Selection{}, err
	}
	if s.RemotePort, err = parsePort("remote-port", c.RemotePort); err != nil {
		return Selection{}, err
	}

	return s, nil
}

// Validate checks the flags that do not feed the selection.
func (c Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputJSON, OutputDump:
	default:
		return errors.Errorf("unknown output format %q", c.Output)
	}
	_, err := c.Selection()
	return err
}

func parseAddr(name, v string) (netip.Addr, error) {
	if v == "" {
		return netip.Addr{}, nil
	}
	a, err := netip.ParseAddr(v)
	if err != nil {
		return netip.Addr{}, errors.Wrapf(err, "invalid -%s", name)
	}
	return a, nil
}

func parsePort(name, v string) (*uint32, error) {
	if v == "" {
		return nil, nil
	}
	p, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid -%s", name)
	}
	return procnet.Port(uint32(p)), nil
}

type multiString []string

func (m *multiString) String() string {
	if m == nil {
		return ""
	}
	return strings.Join(*m, ",")
}

func (m *multiString) Set(value string) error {
	*m = append(*m, value)
	return nil
}
