package core

import "regexp"

// trailingDigits captures the run of decimal digits (any script) that ends a label.
var trailingDigits = regexp.MustCompile(`(\p{Nd}+)$`)

// ExtractTrailingDigits returns the run of digits at the very end of label.
// The digits are returned verbatim, leading zeros included.
func ExtractTrailingDigits(label string) (string, bool) {
	m := trailingDigits.FindStringSubmatch(label)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// KeyFromLabel derives the canonical wallet key from a free-text label.
// "Cold Storage 7" yields "Wallet 7"; "Main Wallet" yields false.
func KeyFromLabel(label string) (WalletKey, bool) {
	n, ok := ExtractTrailingDigits(label)
	if !ok {
		return "", false
	}
	return WalletKey("Wallet " + n), true
}
