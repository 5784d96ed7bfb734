package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"bistro/internal/errors"
)

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	nonDigit      = regexp.MustCompile(`\D`)
)

// CardValidator checks card data before it is reduced to display fields.
type CardValidator struct {
	now func() time.Time
}

// NewCardValidator creates a new card validator.
func NewCardValidator() *CardValidator {
	return &CardValidator{now: time.Now}
}

// CardDetails is what survives validation: no full number is kept.
type CardDetails struct {
	Masked string
	Last4  string
	Brand  string
}

// Validate checks the number with Luhn and the MM/YY expiry, then returns
// the masked display fields.
func (v *CardValidator) Validate(cardNumber, expiry string) (*CardDetails, error) {
	digits := normalizeCardNumber(cardNumber)
	if !v.validateLuhn(digits) {
		return nil, errors.Wrap(errors.ErrInvalidCard, "card number is invalid")
	}
	if !expiryPattern.MatchString(expiry) || !v.validateExpiry(expiry) {
		return nil, errors.Wrap(errors.ErrInvalidCard, "card expiry is invalid or in the past")
	}
	return &CardDetails{
		Masked: v.MaskCardNumber(digits),
		Last4:  digits[len(digits)-4:],
		Brand:  DetectBrand(digits),
	}, nil
}

// validateLuhn validates a card number using the Luhn algorithm.
func (v *CardValidator) validateLuhn(digits string) bool {
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

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

// validateExpiry accepts cards that expire this month or later.
func (v *CardValidator) validateExpiry(expiry string) bool {
	month, err := strconv.Atoi(expiry[:2])
	if err != nil {
		return false
	}
	year, err := strconv.Atoi(expiry[3:])
	if err != nil {
		return false
	}
	now := v.now().UTC()
	firstOfNextMonth := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return now.Before(firstOfNextMonth)
}

// MaskCardNumber masks a card number, showing only last 4 digits.
func (v *CardValidator) MaskCardNumber(cardNumber string) string {
	digits := normalizeCardNumber(cardNumber)
	if len(digits) < 4 {
		return "****"
	}
	return "****" + digits[len(digits)-4:]
}

// DetectBrand guesses the card network from its IIN prefix.
func DetectBrand(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return "visa"
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return "mastercard"
	case len(digits) >= 4 && digits[:4] >= "2221" && digits[:4] <= "2720":
		return "mastercard"
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return "amex"
	case strings.HasPrefix(digits, "6011"), strings.HasPrefix(digits, "65"):
		return "discover"
	default:
		return "unknown"
	}
}

func normalizeCardNumber(cardNumber string) string {
	return nonDigit.ReplaceAllString(cardNumber, "")
}
