package profile

import (
	"errors"
	"strings"
)

var ErrInvalidCard = errors.New("invalid card number")

// normalizeCard strips spaces and dashes and checks the number with the
// Luhn algorithm.
func normalizeCard(number string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)

	// ASCII only, so byte length and byte arithmetic below are per digit
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", ErrInvalidCard
		}
	}
	if len(digits) < 12 || len(digits) > 19 {
		return "", ErrInvalidCard
	}
	if !luhn(digits) {
		return "", ErrInvalidCard
	}
	return digits, nil
}

func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func cardBrand(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return "Visa"
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return "Amex"
	case digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return "Mastercard"
	case strings.HasPrefix(digits, "2"):
		return "Mastercard"
	case strings.HasPrefix(digits, "6"):
		return "Discover"
	default:
		return "Card"
	}
}
