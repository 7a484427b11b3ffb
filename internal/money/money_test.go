package money

import "testing"

func TestParseMinor(t *testing.T) {
	cases := []struct {
		input   string
		want    int64
		wantErr error
	}{
		{"12.50", 1250, nil},
		{" 3 ", 300, nil},
		{"0.05", 5, nil},
		{"-7.25", -725, nil},
		{"1200", 120000, nil},
		{"1.5", 150, nil},
		{"", 0, ErrInvalidAmount},
		{"abc", 0, ErrInvalidAmount},
		{"1.234", 0, ErrTooManyDecimals},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if err != tc.wantErr {
			t.Fatalf("ParseMinor(%q) error = %v, want %v", tc.input, err, tc.wantErr)
		}
		if err == nil && got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestFormatMinor(t *testing.T) {
	if got := FormatMinor(1250); got != "12.50" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := FormatMinor(-5); got != "-0.05" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := FormatMinor(0); got != "0.00" {
		t.Fatalf("unexpected format: %s", got)
	}
}
