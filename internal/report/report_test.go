package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modemtrack/internal/device"
)

func sampleDevices() []device.Device {
	return []device.Device{
		{
			Status: "Active", ConnectionType: "Wireless", Name: "手机",
			IPv4: "192.168.10.5", MAC: "AA:BB:CC:DD:EE:FF", Allocation: "DHCP",
			Lease: device.Int(3600), LastActive: device.Str("2025-04-06T16:04:31"),
			IsActive: true, IsWireless: true,
		},
		{
			Status: "Inactive", ConnectionType: "Ethernet", Name: "Unknown",
			IPv4: "192.168.10.7", MAC: "11:22:33:44:55:66", Allocation: "Static",
			Lease: device.Str("garbage"), LastActive: device.Str("never"),
		},
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	devices := sampleDevices()
	path := filepath.Join(t.TempDir(), "device_report.json")
	if err := WriteJSON(path, devices); err != nil {
		t.Fatalf("write report: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	// Non-ASCII names stay literal, and the numeric lease is a bare number.
	if !strings.Contains(string(data), "手机") {
		t.Fatalf("report escaped UTF-8: %s", data)
	}
	if !strings.Contains(string(data), `"lease": 3600`) {
		t.Fatalf("numeric lease not serialised as number: %s", data)
	}

	var back []device.Device
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("reparse report: %v", err)
	}
	if len(back) != len(devices) {
		t.Fatalf("round trip lost devices: %d != %d", len(back), len(devices))
	}
	for i := range devices {
		if back[i] != devices[i] {
			t.Fatalf("device %d mismatch:\n got %+v\nwant %+v", i, back[i], devices[i])
		}
	}
}

func TestPrintLayout(t *testing.T) {
	var sb strings.Builder
	Print(&sb, sampleDevices())
	out := sb.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// blank, title, rule, header, rule, two rows
	if len(lines) != 7 {
		t.Fatalf("unexpected line count %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[2], "----") {
		t.Fatalf("missing separator rule:\n%s", out)
	}
	if !strings.Contains(lines[3], "STATUS") || !strings.Contains(lines[3], "LAST ACTIVE") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(lines[5], "AA:BB:CC:DD:EE:FF") {
		t.Fatalf("first row missing:\n%s", out)
	}
	if strings.Index(out, "AA:BB:CC:DD:EE:FF") > strings.Index(out, "11:22:33:44:55:66") {
		t.Fatalf("rows reordered:\n%s", out)
	}
}
