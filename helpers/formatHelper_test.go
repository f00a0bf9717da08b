package helpers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatEuro(t *testing.T) {
	assert.Equal(t, "€ 22,50", FormatEuro(decimal.RequireFromString("22.5")))
	assert.Equal(t, "€ 0,00", FormatEuro(decimal.Zero))
	assert.Equal(t, "€ 1.234,56", FormatEuro(decimal.RequireFromString("1234.555")))
	assert.Equal(t, "€ 1.000.000,00", FormatEuro(decimal.NewFromInt(1000000)))
	assert.Equal(t, "€ 12.345,60", FormatEuro(decimal.RequireFromString("12345.6")))
	assert.Equal(t, "€ -3,10", FormatEuro(decimal.RequireFromString("-3.1")))
}

func TestFormatDeliveryDuration(t *testing.T) {
	assert.Equal(t, "Afhalen", FormatDeliveryDuration(0))
	assert.Equal(t, "30 min", FormatDeliveryDuration(30))
	assert.Equal(t, "30-60 min", FormatDeliveryDuration(45))
	assert.Equal(t, "17-47 min", FormatDeliveryDuration(32))
}
