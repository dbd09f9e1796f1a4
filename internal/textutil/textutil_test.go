package textutil

import "testing"

func TestCapitalization(t *testing.T) {
	tests := []struct {
		word                     string
		initCaps, allCaps, inner bool
	}{
		{"Paris", true, false, false},
		{"P", true, true, false},
		{"EU", false, true, true},
		{"McDonald", false, false, true},
		{"paris", false, false, false},
		{"Élodie", true, false, false},
		{"U.S.", false, true, true},
		{"", false, false, false},
		{"1990", false, false, false},
	}
	for _, tt := range tests {
		if got := IsInitCaps(tt.word); got != tt.initCaps {
			t.Errorf("IsInitCaps(%q) = %v, want %v", tt.word, got, tt.initCaps)
		}
		if got := IsAllCaps(tt.word); got != tt.allCaps {
			t.Errorf("IsAllCaps(%q) = %v, want %v", tt.word, got, tt.allCaps)
		}
		if got := HasInnerCaps(tt.word); got != tt.inner {
			t.Errorf("HasInnerCaps(%q) = %v, want %v", tt.word, got, tt.inner)
		}
	}
}

func TestDigits(t *testing.T) {
	tests := []struct {
		word      string
		all, some bool
	}{
		{"1990", true, true},
		{"A4", false, true},
		{"abc", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := IsAllDigits(tt.word); got != tt.all {
			t.Errorf("IsAllDigits(%q) = %v, want %v", tt.word, got, tt.all)
		}
		if got := HasDigits(tt.word); got != tt.some {
			t.Errorf("HasDigits(%q) = %v, want %v", tt.word, got, tt.some)
		}
	}
}

func TestNumberPattern(t *testing.T) {
	tests := []struct {
		input string
		ratio float64
		want  string
	}{
		{"12345", 0.3, "XXXXX"},
		{"abc123", 0.3, "CCCXXX"},
		{"abc", 0.3, ""},
		{"", 0.3, ""},
		{"12-34", 0.3, "XX-XX"},
		{"1:0", 0.3, "X:X"},
	}
	for _, tt := range tests {
		got := NumberPattern(tt.input, tt.ratio)
		if got != tt.want {
			t.Errorf("NumberPattern(%q, %v) = %q, want %q", tt.input, tt.ratio, got, tt.want)
		}
	}
}
