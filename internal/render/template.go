// Package render turns records into the short text and tooltip shown in the bar.
package render

import (
	"regexp"
	"strings"

	"github.com/aristath/kanbanbar/internal/utils"
)

var placeholder = regexp.MustCompile(`(?i)\{[a-z]+\}`)

// Template substitutes {name} placeholders from values.
// Keys are matched exactly; placeholders without a value are left as written.
func Template(tpl string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tpl, func(m string) string {
		if v, ok := values[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// Signed formats v with two decimals and a leading "+" when it is not negative.
func Signed(v float64) string {
	s := utils.FormatFixed(v, 2)
	if v >= 0 {
		return "+" + s
	}
	return s
}

// Unit scales a large amount into 亿 (1e8) or 万 (1e4) with two decimals.
func Unit(v float64) string {
	switch {
	case v >= 1e8:
		return utils.FormatFixed(v/1e8, 2) + "亿"
	case v >= 1e4:
		return utils.FormatFixed(v/1e4, 2) + "万"
	default:
		return utils.FormatFixed(v, 2)
	}
}

// Table lays rows out as left-aligned columns separated by two spaces.
func Table(header []string, rows [][]string) string {
	all := append([][]string{header}, rows...)
	widths := make([]int, len(header))
	for _, row := range all {
		for i, cell := range row {
			if i < len(widths) && displayWidth(cell) > widths[i] {
				widths[i] = displayWidth(cell)
			}
		}
	}

	var b strings.Builder
	for r, row := range all {
		if r > 0 {
			b.WriteByte('\n')
		}
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-displayWidth(cell)))
			}
		}
	}
	return b.String()
}

// displayWidth counts wide (CJK) runes as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r >= 0x1100 {
			w += 2
		} else {
			w++
		}
	}
	return w
}
