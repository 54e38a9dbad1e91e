package utils

import "time"

// ValidPersonalNumber checks a government personal identification number
// in the YYYYMMDD-XXXX form: a plausible birth date followed by a
// four-digit suffix whose last digit is a Luhn checksum computed over
// YYMMDDXXX.
func ValidPersonalNumber(pn string) bool {
	if len(pn) != 13 || pn[8] != '-' {
		return false
	}
	digits := pn[:8] + pn[9:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	if _, err := time.Parse("20060102", pn[:8]); err != nil {
		return false
	}
	// Luhn over the short form: YYMMDD plus the first three suffix
	// digits; the 10th digit is the check digit.
	short := digits[2:]
	sum := 0
	for i := 0; i < 9; i++ {
		d := int(short[i] - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return check == int(short[9]-'0')
}
