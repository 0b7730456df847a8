package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"EGP 2,013.50", 2013.50},
		{"2,013.50 EGP", 2013.50},
		{"2,013", 2013},
		{"99,50", 99.50},
		{"1.299,00 SAR", 1299},
		{"1.234.567", 1234567},
		{"AED 149.99", 149.99},
		{"was 200 now 149", 149},
	}
	for _, c := range cases {
		got, ok := ParseValue(c.in)
		require.True(t, ok, c.in)
		assert.InDelta(t, c.want, got, 1e-9, c.in)
	}
}

func TestParseValueNoNumber(t *testing.T) {
	_, ok := ParseValue("Currently unavailable")
	assert.False(t, ok)

	_, ok = ParseValue("")
	assert.False(t, ok)
}

func TestDetectCurrency(t *testing.T) {
	assert.Equal(t, "EGP", DetectCurrency("EGP 100"))
	assert.Equal(t, "EGP", DetectCurrency("100 جنيه"))
	assert.Equal(t, "SAR", DetectCurrency("SAR 1,299.00"))
	assert.Equal(t, "AED", DetectCurrency("149 درهم"))
	assert.Equal(t, "USD", DetectCurrency("$19.99"))
	assert.Equal(t, "", DetectCurrency("19.99"))
}

func TestParse(t *testing.T) {
	p := Parse("EGP 2,013.50")
	require.NotNil(t, p.Value)
	assert.Equal(t, 2013.50, *p.Value)
	assert.Equal(t, "EGP", p.Currency)

	p = Parse("out of stock")
	assert.Nil(t, p.Value)
	assert.Equal(t, "", p.Currency)
}
