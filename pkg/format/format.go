// Package format turns raw counts and timestamps into display strings.
package format

import (
	"math"
	"strconv"
	"time"
)

const timestampLayout = "January 2, 2006, 03:04 PM"

// FormatCount abbreviates n with one truncated decimal: 1234 -> "1.2K",
// 1234567 -> "1.2M". Values below 1000 are printed as-is.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return tenths(n/100_000) + "M"
	case n >= 1_000:
		return tenths(n/100) + "K"
	}
	return strconv.FormatInt(n, 10)
}

// tenths prints t/10 with exactly one decimal.
func tenths(t int64) string {
	return strconv.FormatInt(t/10, 10) + "." + strconv.FormatInt(t%10, 10)
}

// FormatDelta renders a "today" increment as "+1.2K". Zero and negative
// deltas render as an empty string.
func FormatDelta(n int64) string {
	if n <= 0 {
		return ""
	}
	return "+" + FormatCount(n)
}

// FormatShare renders part/total as a one-decimal percentage.
func FormatShare(part, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return strconv.FormatFloat(float64(part)/float64(total)*100, 'f', 1, 64) + "%"
}

// FormatPerMillion renders a per-million rate rounded to an integer.
func FormatPerMillion(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

// FormatTimestamp renders a millisecond epoch as "January 2, 2006, 03:04 PM" in UTC.
func FormatTimestamp(ms int64) string {
	return FormatTimestampIn(ms, time.UTC)
}

// FormatTimestampIn is FormatTimestamp in the given location. A nil location means UTC.
func FormatTimestampIn(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc).Format(timestampLayout)
}
