package util

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const InvalidDate = "Invalid Date"

var usPrinter = message.NewPrinter(language.AmericanEnglish)

var statusColors = map[string]string{
	"pending":   "bg-yellow-100 text-yellow-800",
	"accepted":  "bg-green-100 text-green-800",
	"completed": "bg-blue-100 text-blue-800",
	"cancelled": "bg-red-100 text-red-800",
	"rejected":  "bg-gray-100 text-gray-800",
}

const defaultStatusColor = "bg-gray-100 text-gray-800"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// FormatCurrency renders amount as US dollars, e.g. "$1,234.50".
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$NaN"
	}
	if amount < 0 {
		return "-" + FormatCurrency(-amount)
	}

	return usPrinter.Sprintf("$%.2f", amount)
}

// FormatDate renders an API timestamp as "Jan 2, 2006". Unparseable input
// yields InvalidDate.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("Jan 2, 2006")
		}
	}

	return InvalidDate
}

// StatusColor maps an order or quotation status to its badge classes.
func StatusColor(status string) string {
	if color, ok := statusColors[status]; ok {
		return color
	}
	return defaultStatusColor
}
