package ingest

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		name string
		in   any
		out  string
		ok   bool
	}{
		{"romanian dotted", "01.12.2025", "2025-12-01", true},
		{"romanian slashed", "01/12/2025", "2025-12-01", true},
		{"dashed day first", "01-12-2025", "2025-12-01", true},
		{"two digit year", "01.12.25", "2025-12-01", true},
		{"single digit parts padded", "1.2.2025", "2025-02-01", true},
		{"iso", "2025-12-02", "2025-12-02", true},
		{"iso with time", "2025-12-02 08:57:52", "2025-12-02", true},
		{"iso with T time", "2025-12-02T08:57:52", "2025-12-02", true},
		{"revolut", "01 Dec 2024", "2024-12-01", true},
		{"revolut lowercase month", "01 dec 2024", "2024-12-01", true},
		{"serial number", float64(45200), "2023-10-01", true},
		{"serial numeric string", "45200", "2023-10-01", true},
		{"serial mid range", float64(45208), "2023-10-09", true},
		{"number below serial range", float64(1234), "", false},
		{"number above serial range", float64(70000), "", false},
		{"garbage", "tomorrow", "", false},
		{"empty", "", "", false},
		{"nil", nil, "", false},
		{"unknown month name", "01 Foo 2024", "", false},
		{"month first rejected", "12/31/2025", "", false},
		{"impossible day", "32.01.2025", "", false},
		{"impossible iso month", "2025-13-01", "", false},
		{"impossible english day", "45 Dec 2024", "", false},
		{"leap day", "29.02.2024", "2024-02-29", true},
		{"nonexistent leap day", "29.02.2025", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeDate(tc.in)
			if ok != tc.ok {
				t.Fatalf("%v: expected ok=%v, got ok=%v (%q)", tc.in, tc.ok, ok, got)
			}
			if ok && got != tc.out {
				t.Fatalf("%v: expected %q, got %q", tc.in, tc.out, got)
			}
		})
	}
}

func TestLooksLikeDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"01.12.2025", true},
		{"1/2/25", true},
		{"2025-12-02", true},
		{"2025-12-02 08:57", true},
		{"2025-12-02 08:57:52", true},
		{"KAUFLAND BUCURESTI", false},
		{"-45.50", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := looksLikeDate(tc.in); got != tc.ok {
			t.Errorf("looksLikeDate(%q) = %v, expected %v", tc.in, got, tc.ok)
		}
	}
}
