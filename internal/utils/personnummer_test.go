package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPersonalNumber(t *testing.T) {
	// Checksums computed over the short form (YYMMDD plus the first
	// three suffix digits).
	assert.True(t, ValidPersonalNumber("19900101-0017"))
	assert.True(t, ValidPersonalNumber("19851224-1236"))
}

func TestValidPersonalNumberRejects(t *testing.T) {
	cases := map[string]string{
		"19900101-0018":  "wrong check digit",
		"19901340-0017":  "impossible birth date",
		"199001010017":   "missing separator",
		"19900101_0017":  "wrong separator",
		"1990010-100177": "separator misplaced",
		"19900101-001a":  "non-digit suffix",
		"19900101-17":    "too short",
		"":               "empty",
	}
	for pn, why := range cases {
		assert.False(t, ValidPersonalNumber(pn), why)
	}
}
