package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New returns a slog.Logger writing timestamped lines to stdout and, when a
// path is given, to a log file as well. The returned func closes the file
// handle and is safe to defer even on the stdout-only path.
func New(logFile string) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stdout
	closer := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
		closer = func() { _ = f.Close() }
	}
	handler := slog.NewTextHandler(w, nil)
	return slog.New(handler), closer, nil
}
