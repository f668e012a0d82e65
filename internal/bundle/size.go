package bundle

import (
	"fmt"
	"strings"
)

const (
	kib = 1 << 10
	mib = 1 << 20
	gib = 1 << 30
)

// FormatSize renders n bytes as 512B, 2.00K, 5.00M or 3.00G.
func FormatSize(n int64) string {
	switch {
	case n < kib:
		return fmt.Sprintf("%dB", n)
	case n < mib:
		return fmt.Sprintf("%.2fK", float64(n)/kib)
	case n < gib:
		return fmt.Sprintf("%.2fM", float64(n)/mib)
	default:
		return fmt.Sprintf("%.2fG", float64(n)/gib)
	}
}

// FormatSizeUnit formats n given in unit ("K" or "M"; anything else means bytes).
func FormatSizeUnit(n int64, unit string) string {
	switch strings.ToUpper(unit) {
	case "K":
		n <<= 10
	case "M":
		n <<= 20
	}
	return FormatSize(n)
}
