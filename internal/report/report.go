package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"modemtrack/internal/device"
)

// Print renders the device list as a fixed-width console summary, in the
// order received.
func Print(w io.Writer, devices []device.Device) {
	rule := strings.Repeat("-", 120)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Device summary:")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-10s %-20s %-16s %-20s %-25s\n", "STATUS", "NAME", "IP", "MAC", "LAST ACTIVE")
	fmt.Fprintln(w, rule)
	for _, d := range devices {
		fmt.Fprintf(w, "%-10s %-20s %-16s %-20s %-25s\n",
			d.Status, d.Name, d.IPv4, d.MAC, d.LastActive.String())
	}
}

// WriteJSON persists the full report as a pretty-printed array. Non-ASCII
// device names stay literal UTF-8.
func WriteJSON(path string, devices []device.Device) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(devices); err != nil {
		f.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}
