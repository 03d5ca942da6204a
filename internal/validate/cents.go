package validate

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var errBadAmount = errors.New("invalid amount")

// ParseCents converts a decimal string such as "1250.50" into integer cents.
// At most two fractional digits are accepted; monetary values never carry
// sub-cent precision in this system.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errBadAmount
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, errBadAmount
	}
	if whole == "" {
		whole = "0"
	}
	var cents int64
	for _, r := range whole {
		if r < '0' || r > '9' {
			return 0, errBadAmount
		}
		if cents > (math.MaxInt64-9)/10 {
			return 0, errBadAmount
		}
		cents = cents*10 + int64(r-'0')
	}
	// The cents conversion below must not wrap either.
	if cents > math.MaxInt64/100 {
		return 0, errBadAmount
	}
	cents *= 100
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, errBadAmount
		}
		mult := int64(10)
		if len(frac) == 2 {
			mult = 1
		}
		var f int64
		for _, r := range frac {
			if r < '0' || r > '9' {
				return 0, errBadAmount
			}
			f = f*10 + int64(r-'0')
		}
		cents += f * mult
	}
	if neg {
		cents = -cents
	}
	return cents, nil
}

// FormatCents renders integer cents as a plain decimal string.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
