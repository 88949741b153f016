package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"12.34", "12.34", false},
		{"12,34", "12.34", false},
		{" 1500 ", "1500", false},
		{"0.01", "0.01", false},
		{"0", "", true},
		{"-5", "", true},
		{"", "", true},
		{"abc", "", true},
		{"1.2.3", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestSafeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12,50", "12.5"},
		{"0", "0"},
		{"", "0"},
		{"garbage", "0"},
		{"-3", "0"},
	}

	for _, tt := range tests {
		if got := SafeAmount(tt.in); !got.Equal(dec(tt.want)) {
			t.Errorf("SafeAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
