package device

import (
	"regexp"
	"testing"
)

func TestFormatMAC(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"aa-bb-cc-dd-ee-ff", "AA:BB:CC:DD:EE:FF"},
		{"AABBCCDDEEFF", "AA:BB:CC:DD:EE:FF"},
		{"aa:bb:cc:dd:ee:ff ", "AA:BB:CC:DD:EE:FF"},
		{"aabb.ccdd.eeff", "AA:BB:CC:DD:EE:FF"},
		{"not a mac", "not a mac"},
		{"aa-bb-cc-dd-ee", "aa-bb-cc-dd-ee"},
		{"aa-bb-cc-dd-ee-ff-00", "aa-bb-cc-dd-ee-ff-00"},
		{"", ""},
	}
	canonical := regexp.MustCompile(`^[0-9A-F]{2}(:[0-9A-F]{2}){5}$`)
	for _, tc := range cases {
		got := FormatMAC(tc.in)
		if got != tc.want {
			t.Fatalf("FormatMAC(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if got != tc.in && !canonical.MatchString(got) {
			t.Fatalf("FormatMAC(%q) = %q is neither canonical nor passthrough", tc.in, got)
		}
	}
}

func TestFormatMACPassthroughIdempotent(t *testing.T) {
	for _, in := range []string{"garbage", "zz:zz:zz:zz:zz:zz", "aa-bb"} {
		once := FormatMAC(in)
		if once != in {
			t.Fatalf("FormatMAC(%q) = %q, want unchanged input", in, once)
		}
		if FormatMAC(once) != once {
			t.Fatalf("FormatMAC not idempotent for %q", in)
		}
	}
}

func TestParseLeaseSeconds(t *testing.T) {
	cases := []struct {
		in   string
		want Value
	}{
		{"2 hour 30 min", Int(9000)},
		{"1 hour 0 min", Int(3600)},
		{"45 sec", Int(45)},
		{"0 sec", Int(0)},
		{"3 Hour 15 Min 9 Sec", Int(11709)},
		{"garbage", Str("garbage")},
		{"  forever  ", Str("forever")},
		{"", Str("")},
	}
	for _, tc := range cases {
		if got := ParseLeaseSeconds(tc.in); got != tc.want {
			t.Fatalf("ParseLeaseSeconds(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseLeaseZeroDistinctFromUnparseable(t *testing.T) {
	zero := ParseLeaseSeconds("0 sec")
	if n, ok := zero.Number(); !ok || n != 0 {
		t.Fatalf("expected parsed zero, got %v", zero)
	}
	if _, ok := ParseLeaseSeconds("unknown").Number(); ok {
		t.Fatalf("unparseable lease must not produce a number")
	}
}

func TestParseLastActive(t *testing.T) {
	cases := []struct {
		in   string
		want Value
	}{
		{"04/06/2025 04:04:31 PM", Str("2025-04-06T16:04:31")},
		{"12/31/2024 12:00:00 AM", Str("2024-12-31T00:00:00")},
		{" 04/06/2025 04:04:31 PM ", Str("2025-04-06T16:04:31")},
		{"not a date", Str("not a date")},
		{"2025-04-06", Str("2025-04-06")},
		{"", Str("")},
	}
	for _, tc := range cases {
		if got := ParseLastActive(tc.in); got != tc.want {
			t.Fatalf("ParseLastActive(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
