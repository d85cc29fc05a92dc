package utils

import "testing"

func TestSanitizePIN(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"1234", "1234"},
		{"12ab34", "1234"},
		{"123456", "1234"},
		{"abcd", ""},
		{"", ""},
		{"9", "9"},
	}

	for _, tc := range cases {
		if got := SanitizePIN(tc.input); got != tc.expected {
			t.Errorf("SanitizePIN(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}
