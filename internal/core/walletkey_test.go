package core

import "testing"

func TestKeyFromLabel(t *testing.T) {
	tests := []struct {
		label  string
		want   WalletKey
		wantOK bool
	}{
		{label: "Cold Storage 7", want: "Wallet 7", wantOK: true},
		{label: "Cold-3", want: "Wallet 3", wantOK: true},
		{label: "Vault-007", want: "Wallet 007", wantOK: true},
		{label: "Wallet 12", want: "Wallet 12", wantOK: true},
		{label: "Tier2 Wallet 15", want: "Wallet 15", wantOK: true},
		{label: "42", want: "Wallet 42", wantOK: true},
		{label: "Vault-٣", want: "Wallet ٣", wantOK: true},
		{label: "Cold １２", want: "Wallet １２", wantOK: true},
		{label: "Main Wallet", wantOK: false},
		{label: "Wallet ²", wantOK: false},
		{label: "7 Wallet", wantOK: false},
		{label: "Wallet 7 ", wantOK: false},
		{label: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := KeyFromLabel(tt.label)
			if ok != tt.wantOK {
				t.Fatalf("KeyFromLabel(%q) ok = %v, want %v", tt.label, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("KeyFromLabel(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestExtractTrailingDigits_KeepsLeadingZeros(t *testing.T) {
	got, ok := ExtractTrailingDigits("Node-0009")
	if !ok || got != "0009" {
		t.Errorf("ExtractTrailingDigits = %q, %v; want \"0009\", true", got, ok)
	}
}
