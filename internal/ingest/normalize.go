package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoDigits means a raw price string contained no decimal digits and
// therefore cannot be normalized.
var ErrNoDigits = errors.New("price contains no digits")

// NormalizePrice drops every non-digit character and parses what is left
// as a base-10 integer. This is plain digit concatenation: "1 234 ₽"
// becomes 1234 and "12.50" becomes 1250. Decimal separators carry no
// meaning here, matching the page format the scraper targets.
func NormalizePrice(raw string) (int64, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("normalize %q: %w", raw, ErrNoDigits)
	}

	cost, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("normalize %q: %w", raw, err)
	}
	return cost, nil
}
