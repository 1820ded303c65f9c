package feature

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// commaf renders a float with thousands separators, e.g. 1234567.8 with two
// decimals -> "1,234,567.80".
func commaf(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	grouped := groupThousands(intPart)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(grouped)
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

func commaInt(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	grouped := groupThousands(strconv.FormatInt(n, 10))
	if neg {
		return "-" + grouped
	}
	return grouped
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// truncate bounds a reply to Telegram's message size with an ellipsis,
// cutting on a rune boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// formatUptime renders a duration as "3h 27m".
func formatUptime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
}
