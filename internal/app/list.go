package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"

	"procnet-exporter/internal/config"
	"procnet-exporter/internal/ports"
	"procnet-exporter/internal/procfs"
	"procnet-exporter/internal/procnet"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// List reads the selected tables, filters them and writes the result to w.
// Any table that cannot be read or decoded fails the whole listing.
func List(w io.Writer, pfs procfs.FS, sel config.Selection, format string) error {
	all := []procnet.Entry{}
	for _, m := range sel.Modes {
		entries, err := pfs.ReadTable(m)
		if err != nil {
			return err
		}
		all = append(all, procnet.Filter(entries, sel.Criteria(m))...)
	}

	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	case config.OutputDump:
		dumpConfig.Fdump(w, all)
		return nil
	default:
		return writeTable(w, all, sel.Modes)
	}
}

func writeTable(w io.Writer, entries []procnet.Entry, modes []procnet.Mode) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROTO\tLOCAL ADDRESS\tREMOTE ADDRESS\tSTATE\tUID\tSERVICE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.Mode, e.Local(), e.Remote(), e.State(), e.UID, ports.ServiceName(e.Mode, e.LocalPort))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s sockets (%s)\n", humanize.Comma(int64(len(entries))), modeList(modes))
	return err
}

func modeList(modes []procnet.Mode) string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	return strings.Join(names, ",")
}
