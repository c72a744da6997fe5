package tool

import "fmt"

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders bytes with 1024-based units and two decimals, e.g. "10.00 MB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	if bytes < 1024 {
		return fmt.Sprintf("%d Bytes", bytes)
	}
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", value, sizeUnits[i])
}

// TruncateText cuts text to maxLength runes and marks the cut with "...".
func TruncateText(text string, maxLength int) string {
	r := []rune(text)
	if len(r) <= maxLength {
		return text
	}
	return string(r[:maxLength]) + "..."
}
