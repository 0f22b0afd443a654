package device

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	lastActiveLayout = "01/02/2006 03:04:05 PM"
	isoLayout        = "2006-01-02T15:04:05"
)

var (
	nonHex   = regexp.MustCompile(`[^0-9A-Fa-f]`)
	leasePat = regexp.MustCompile(`(?i)(\d+)\s*(hour|min|sec)`)
)

// FormatMAC canonicalises a MAC address to colon-separated uppercase hex.
// Input that does not reduce to exactly 12 hex characters is returned
// unmodified, never partially transformed.
func FormatMAC(raw string) string {
	cleaned := strings.ToUpper(nonHex.ReplaceAllString(raw, ""))
	if len(cleaned) != 12 {
		return raw
	}
	pairs := make([]string, 0, 6)
	for i := 0; i < len(cleaned); i += 2 {
		pairs = append(pairs, cleaned[i:i+2])
	}
	return strings.Join(pairs, ":")
}

// ParseLeaseSeconds converts a firmware lease string such as "2 hour 30 min"
// to total seconds. When no duration component matches, the trimmed raw
// string is carried instead, so "garbage" is not conflated with a zero lease.
func ParseLeaseSeconds(raw string) Value {
	var total int64
	matched := false
	for _, m := range leasePat.FindAllStringSubmatch(raw, -1) {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "hour":
			total += n * 3600
		case "min":
			total += n * 60
		case "sec":
			total += n
		}
		matched = true
	}
	if !matched {
		return Str(strings.TrimSpace(raw))
	}
	return Int(total)
}

// ParseLastActive converts the gateway's "MM/DD/YYYY hh:mm:ss AM/PM" stamps
// to ISO-8601. Anything else passes through trimmed.
func ParseLastActive(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	t, err := time.Parse(lastActiveLayout, trimmed)
	if err != nil {
		return Str(trimmed)
	}
	return Str(t.Format(isoLayout))
}
