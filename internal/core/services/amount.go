package services

import (
	"regexp"
	"strconv"
	"strings"
)

var amountPattern = regexp.MustCompile(`(?i)([$£€])?\s?(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?(?:\s?(million|thousand|k|m)\b)?`)

// ExtractAmountRange pulls the numeric bounds out of a free-form amount such
// as "$1,000 - $5,000" or "Up to €2.5k". Currency-marked figures win over bare
// numbers. Returns nils when nothing numeric is present.
func ExtractAmountRange(amount string) (min, max *float64) {
	matches := amountPattern.FindAllStringSubmatch(amount, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	var marked, bare []float64
	for _, m := range matches {
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", "")+m[3], 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[4]) {
		case "k", "thousand":
			value *= 1_000
		case "m", "million":
			value *= 1_000_000
		}
		if m[1] != "" {
			marked = append(marked, value)
		} else {
			bare = append(bare, value)
		}
	}

	values := marked
	if len(values) == 0 {
		values = bare
	}
	if len(values) == 0 {
		return nil, nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return &lo, &hi
}
