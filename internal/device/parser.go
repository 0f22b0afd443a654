package device

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// HTMLCellCount is the number of columns the firmware renders per device row:
// status, connection type, name, IPv4, MAC, allocation, lease, last active,
// plus one trailing action cell.
const HTMLCellCount = 9

// StateObject mirrors one entry of the firmware's in-page device
// configuration array.
type StateObject struct {
	Active             bool            `json:"Active"`
	InterfaceType      string          `json:"InterfaceType"`
	HostName           string          `json:"HostName"`
	IPAddress          string          `json:"IPAddress"`
	MACAddress         string          `json:"MACAddress"`
	AddressSource      string          `json:"AddressSource"`
	LeaseTimeRemaining json.RawMessage `json:"LeaseTimeRemaining"`
	LastActiveTime     string          `json:"X_ALU_COM_LastActiveTime"`
}

// Row is the tagged input to ParseRow. Exactly one of Cells or State is set:
// Cells carries the text of one HTML table row, State carries one firmware
// JS-state object.
type Row struct {
	Cells []string
	State *StateObject
}

// ParseRow normalises one raw device row into its canonical form. A failure
// covers that row only; callers log and move on to the next one.
func ParseRow(row Row) (Device, error) {
	switch {
	case row.State != nil:
		return parseState(row.State), nil
	case row.Cells != nil:
		return parseCells(row.Cells)
	default:
		return Device{}, errors.New("empty row")
	}
}

func parseCells(cells []string) (Device, error) {
	if len(cells) != HTMLCellCount {
		return Device{}, fmt.Errorf("expected %d cells, got %d", HTMLCellCount, len(cells))
	}
	d := Device{
		Status:         strings.TrimSpace(cells[0]),
		ConnectionType: strings.TrimSpace(cells[1]),
		Name:           displayName(cells[2]),
		IPv4:           strings.TrimSpace(cells[3]),
		MAC:            FormatMAC(cells[4]),
		Allocation:     strings.TrimSpace(cells[5]),
		Lease:          ParseLeaseSeconds(cells[6]),
		LastActive:     ParseLastActive(cells[7]),
	}
	return derive(d), nil
}

// parseState maps the firmware JS-state shape. Status comes from the Active
// flag; lease and last-active pass through untouched because the firmware
// maintains them in its own units on this path. The two paths can therefore
// disagree for exotic status strings; see DESIGN.md.
func parseState(obj *StateObject) Device {
	status := "Inactive"
	if obj.Active {
		status = "Active"
	}
	d := Device{
		Status:         status,
		ConnectionType: strings.TrimSpace(obj.InterfaceType),
		Name:           displayName(obj.HostName),
		IPv4:           strings.TrimSpace(obj.IPAddress),
		MAC:            FormatMAC(obj.MACAddress),
		Allocation:     strings.TrimSpace(obj.AddressSource),
		Lease:          rawValue(obj.LeaseTimeRemaining),
		LastActive:     Str(obj.LastActiveTime),
	}
	return derive(d)
}

func derive(d Device) Device {
	d.IsActive = strings.EqualFold(d.Status, "active")
	d.IsWireless = strings.Contains(strings.ToLower(d.ConnectionType), "wireless")
	return d
}

func displayName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "Unknown"
	}
	return name
}

// rawValue carries a firmware JSON scalar into a Value without interpreting
// it: numbers stay numbers, strings stay strings.
func rawValue(raw json.RawMessage) Value {
	if len(raw) == 0 {
		return Str("")
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return Int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Str(s)
	}
	return Str(strings.TrimSpace(string(raw)))
}
