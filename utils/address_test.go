package utils

import (
	"strings"
	"testing"
)

func TestIsValidAddress(t *testing.T) {
	valid := "0x" + strings.Repeat("ab12", 16)

	tests := []struct {
		name string
		addr string
		want bool
	}{
		{name: "valid lowercase", addr: valid, want: true},
		{name: "valid uppercase hex", addr: "0x" + strings.Repeat("AB12", 16), want: true},
		{name: "missing prefix", addr: strings.Repeat("ab12", 16), want: false},
		{name: "too short", addr: "0x1234", want: false},
		{name: "too long", addr: valid + "00", want: false},
		{name: "non-hex character", addr: "0x" + strings.Repeat("zz12", 16), want: false},
		{name: "empty", addr: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidAddress(tt.addr); got != tt.want {
				t.Errorf("IsValidAddress(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	mixed := "0x" + strings.Repeat("Ab12", 16)
	got, err := NormalizeAddress("  " + mixed + " ")
	if err != nil {
		t.Fatalf("NormalizeAddress failed: %v", err)
	}
	if got != strings.ToLower(mixed) {
		t.Errorf("NormalizeAddress(%q) = %q, want lowercase", mixed, got)
	}

	if _, err := NormalizeAddress("0x1234"); err == nil {
		t.Error("NormalizeAddress should reject short address")
	}
}

func TestShortenAddress(t *testing.T) {
	addr := "0x" + strings.Repeat("ab12", 16)
	short := ShortenAddress(addr)
	if len(short) >= len(addr) {
		t.Errorf("ShortenAddress did not shorten: %q", short)
	}
	if !strings.HasPrefix(short, "0xab12ab") {
		t.Errorf("ShortenAddress prefix mismatch: %q", short)
	}
}
