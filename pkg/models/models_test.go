package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$200.00", FormatUSD(20000))
	assert.Equal(t, "$50.00", FormatUSD(5000))
	assert.Equal(t, "$0.99", FormatUSD(99))
	assert.Equal(t, "$0.00", FormatUSD(0))
	assert.Equal(t, "$1234.56", FormatUSD(123456))
}

func TestParseUSD(t *testing.T) {
	assert.Equal(t, int64(20000), ParseUSD("$200.00"))
	assert.Equal(t, int64(20000), ParseUSD("200"))
	assert.Equal(t, int64(123456), ParseUSD("$1,234.56"))
	assert.Equal(t, int64(5000), ParseUSD(" $50.00 "))

	// Operator-edited rows can hold anything.
	assert.Equal(t, int64(0), ParseUSD("TBD"))
	assert.Equal(t, int64(0), ParseUSD(""))
}

func TestReferrer_FirstName(t *testing.T) {
	assert.Equal(t, "Sarah", Referrer{Name: "Sarah Mitchell"}.FirstName())
	assert.Equal(t, "Sarah", Referrer{Name: "  Sarah Anne Mitchell"}.FirstName())
	assert.Equal(t, "Cher", Referrer{Name: "Cher"}.FirstName())
	assert.Equal(t, "", Referrer{}.FirstName())
}
