package utils

import (
	"regexp"
	"strconv"
)

// twoPlaces matches the leading number of a raw feed value with at most two fractional digits.
var twoPlaces = regexp.MustCompile(`^-?\d+(?:\.\d{0,2})?`)

// TruncateDecimals cuts a numeric string to at most places fractional digits.
// It never rounds: "12.345" becomes 12.34. Unparseable input yields 0.
func TruncateDecimals(raw string, places int) float64 {
	re := twoPlaces
	if places != 2 {
		re = regexp.MustCompile(`^-?\d+(?:\.\d{0,` + strconv.Itoa(places) + `})?`)
	}
	match := re.FindString(raw)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatFixed renders v with exactly places fractional digits.
func FormatFixed(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}
