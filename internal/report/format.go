package report

import "fmt"

// FormatHours renders seconds as the "HH.MM" chart value: zero-padded whole
// hours, a dot, zero-padded minutes. 3900 seconds becomes "01.05".
func FormatHours(seconds int64) string {
	return fmt.Sprintf("%02d.%02d", seconds/3600, (seconds/60)%60)
}

// Hours converts seconds to fractional hours, as the per-project user chart
// reports its values.
func Hours(seconds int64) float64 {
	return float64(seconds) / 3600
}
