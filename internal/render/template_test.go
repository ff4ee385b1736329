package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplate(t *testing.T) {
	values := map[string]string{"name": "平安银行", "price": "12.34", "count": "3"}

	tests := []struct {
		name     string
		tpl      string
		expected string
	}{
		{"single", "{name}", "平安银行"},
		{"several", "{name} {price}", "平安银行 12.34"},
		{"unknown placeholder is kept", "{name} {missing}", "平安银行 {missing}"},
		{"keys are exact", "{Name}", "{Name}"},
		{"no placeholders", "MR", "MR"},
		{"digits are not placeholders", "{count} {x1}", "3 {x1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Template(tt.tpl, values))
		})
	}
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+1.50", Signed(1.5))
	assert.Equal(t, "+0.00", Signed(0))
	assert.Equal(t, "-2.25", Signed(-2.25))
}

func TestUnit(t *testing.T) {
	assert.Equal(t, "1.50亿", Unit(150000000))
	assert.Equal(t, "2.30万", Unit(23000))
	assert.Equal(t, "999.00", Unit(999))
}

func TestTable(t *testing.T) {
	out := Table([]string{"a", "bb"}, [][]string{{"ccc", "d"}})
	assert.Equal(t, "a    bb\nccc  d", out)
}
