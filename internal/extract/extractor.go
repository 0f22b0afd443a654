package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modemtrack/internal/device"
)

const (
	// stateExpression serialises the firmware's in-page device configuration
	// array. This is the authoritative real-time source; the rendered table
	// lags behind it.
	stateExpression = `JSON.stringify(device_cfg)`

	// deviceListPath is the endpoint that renders the device table.
	deviceListPath = "/device_management.cgi"

	// tableSelector identifies the tbody holding one row per device.
	tableSelector = "#devicelist"

	tableWaitTimeout = 10 * time.Second
)

// Session is the live-browser surface the extractor drives. The concrete
// implementation lives in internal/session.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	EvaluateJSON(ctx context.Context, expression string) ([]byte, error)
	PageSource(ctx context.Context) (string, error)
}

// Extractor pulls the device list out of an authenticated gateway session,
// preferring the in-page JS state and falling back to the rendered table.
type Extractor struct {
	log      *slog.Logger
	baseURL  string
	debugDir string
}

func New(log *slog.Logger, baseURL, debugDir string) *Extractor {
	return &Extractor{
		log:      log,
		baseURL:  strings.TrimRight(baseURL, "/"),
		debugDir: debugDir,
	}
}

// Extract attempts the JS-state path, then the DOM-table fallback. The
// fallback runs at most once; the state path is never retried within a run.
func (e *Extractor) Extract(ctx context.Context, sess Session) ([]device.Device, error) {
	devices, err := e.fromState(ctx, sess)
	if err == nil {
		e.log.Info("device state read", "devices", len(devices))
		return devices, nil
	}
	e.log.Warn("device state unavailable, falling back to DOM table", "err", err)

	devices, err = e.fromTable(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("device table fallback: %w", err)
	}
	e.log.Info("device table parsed", "devices", len(devices))
	return devices, nil
}

// FromFile replays a previously captured page through the table parser, with
// no live session involved.
func (e *Extractor) FromFile(path string) ([]device.Device, error) {
	e.log.Info("parsing saved device page", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read saved page: %w", err)
	}
	return e.parseTable(string(data))
}

func (e *Extractor) fromState(ctx context.Context, sess Session) ([]device.Device, error) {
	raw, err := sess.EvaluateJSON(ctx, stateExpression)
	if err != nil {
		return nil, err
	}
	var objs []device.StateObject
	if err := json.Unmarshal(raw, &objs); err != nil {
		e.snapshotState(raw)
		return nil, fmt.Errorf("decode device state: %w", err)
	}
	out := make([]device.Device, 0, len(objs))
	for i := range objs {
		d, err := device.ParseRow(device.Row{State: &objs[i]})
		if err != nil {
			e.log.Warn("skipping device entry", "index", i, "err", err)
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (e *Extractor) fromTable(ctx context.Context, sess Session) ([]device.Device, error) {
	if err := sess.Navigate(ctx, e.baseURL+deviceListPath); err != nil {
		return nil, err
	}
	if err := sess.WaitVisible(ctx, tableSelector, tableWaitTimeout); err != nil {
		return nil, err
	}
	source, err := sess.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	return e.parseTable(source)
}

// snapshotState saves the undecodable state payload alongside the other
// debug artifacts.
func (e *Extractor) snapshotState(raw []byte) {
	if e.debugDir == "" || len(raw) == 0 {
		return
	}
	if err := os.MkdirAll(e.debugDir, 0o755); err != nil {
		e.log.Warn("create debug dir", "err", err)
		return
	}
	name := fmt.Sprintf("device_state_%s.json", time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(e.debugDir, name), raw, 0o644); err != nil {
		e.log.Warn("save state snapshot", "err", err)
	}
}
