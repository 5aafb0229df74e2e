package collector

import (
	"errors"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"procnet-exporter/internal/logging"
	"procnet-exporter/internal/ports"
	"procnet-exporter/internal/procfs"
	"procnet-exporter/internal/procnet"
)

// SocketCollector reads the `/proc/net/{tcp,udp,tcp6,udp6}` tables on
// every scrape and reports socket counts.
//
// Design notes:
// - Nothing is cached between scrapes; every Collect is a fresh snapshot,
//   so all metrics are const metrics built from that snapshot.
// - Tables are read concurrently, one goroutine per mode. Each goroutine
//   owns its file and entry slice.
// - A table that fails to read or decode yields procnet_scrape_success=0
//   for its mode and no other series for that mode.
type SocketCollector struct {
	fs     procfs.FS
	modes  []procnet.Mode
	filter Filter
	log    *logging.Logger

	sockets   *prometheus.Desc
	byUID     *prometheus.Desc
	listening *prometheus.Desc
	success   *prometheus.Desc
	duration  *prometheus.Desc
}

// Filter restricts which sockets are counted. Zero values count everything.
type Filter struct {
	LocalAddress netip.Addr
	LocalPort    *uint32
}

func (f Filter) criteria(mode procnet.Mode) procnet.Criteria {
	return procnet.Criteria{Mode: mode, LocalAddress: f.LocalAddress, LocalPort: f.LocalPort}
}

type tableResult struct {
	mode    procnet.Mode
	entries []procnet.Entry
	err     error
}

type listenKey struct {
	port    uint32
	service string
}

func NewSocketCollector(fs procfs.FS, modes []procnet.Mode, filter Filter, log *logging.Logger) *SocketCollector {
	return &SocketCollector{
		fs:     fs,
		modes:  modes,
		filter: filter,
		log:    log,

		sockets: prometheus.NewDesc(
			"procnet_sockets",
			"Number of sockets in the connection table, by state.",
			[]string{"mode", "state"}, nil,
		),
		byUID: prometheus.NewDesc(
			"procnet_sockets_by_uid",
			"Number of sockets in the connection table, by owning user id.",
			[]string{"mode", "uid"}, nil,
		),
		listening: prometheus.NewDesc(
			"procnet_listening_sockets",
			"Number of listening (TCP) or unconnected (UDP) sockets, by local port.",
			[]string{"mode", "port", "service"}, nil,
		),
		success: prometheus.NewDesc(
			"procnet_scrape_success",
			"Whether the connection table was read and decoded successfully.",
			[]string{"mode"}, nil,
		),
		duration: prometheus.NewDesc(
			"procnet_scrape_duration_seconds",
			"Time spent reading and decoding all connection tables.",
			nil, nil,
		),
	}
}

func (c *SocketCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sockets
	ch <- c.byUID
	ch <- c.listening
	ch <- c.success
	ch <- c.duration
}

func (c *SocketCollector) Collect(ch chan<- prometheus.Metric) {
	start := time.Now()

	for _, r := range c.readTables() {
		mode := r.mode.String()
		if r.err != nil {
			c.logTableError(r)
			ch <- prometheus.MustNewConstMetric(c.success, prometheus.GaugeValue, 0, mode)
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.success, prometheus.GaugeValue, 1, mode)
		c.collectTable(ch, r.mode, r.entries)
	}

	ch <- prometheus.MustNewConstMetric(c.duration, prometheus.GaugeValue, time.Since(start).Seconds())
}

func (c *SocketCollector) readTables() []tableResult {
	results := make([]tableResult, len(c.modes))

	// Errors are kept per table so one broken table does not hide the others.
	var g errgroup.Group
	for i, m := range c.modes {
		i, m := i, m
		g.Go(func() error {
			entries, err := c.fs.ReadTable(m)
			if err == nil {
				entries = procnet.Filter(entries, c.filter.criteria(m))
			}
			results[i] = tableResult{mode: m, entries: entries, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *SocketCollector) collectTable(ch chan<- prometheus.Metric, mode procnet.Mode, entries []procnet.Entry) {
	states := map[string]int{}
	uids := map[int32]int{}
	listen := map[listenKey]int{}

	for _, e := range entries {
		states[e.State().String()]++
		uids[e.UID]++
		if e.Listening() {
			listen[listenKey{port: e.LocalPort, service: ports.ServiceName(mode, e.LocalPort)}]++
		}
	}

	m := mode.String()
	for state, n := range states {
		ch <- prometheus.MustNewConstMetric(c.sockets, prometheus.GaugeValue, float64(n), m, state)
	}
	for uid, n := range uids {
		ch <- prometheus.MustNewConstMetric(c.byUID, prometheus.GaugeValue, float64(n), m, strconv.Itoa(int(uid)))
	}
	for k, n := range listen {
		ch <- prometheus.MustNewConstMetric(c.listening, prometheus.GaugeValue, float64(n), m, strconv.FormatUint(uint64(k.port), 10), k.service)
	}
}

func (c *SocketCollector) logTableError(r tableResult) {
	if c.log == nil {
		return
	}
	if errors.Is(r.err, os.ErrNotExist) {
		c.log.Debug("connection table not present", "mode", r.mode, "path", c.fs.TablePath(r.mode))
		return
	}
	c.log.Warn("failed to read connection table", "mode", r.mode, "err", r.err)
}
