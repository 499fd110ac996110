package scout

import "regexp"

// moneyPattern matches a decimal money amount: digits with optional
// thousands separators and exactly two decimal places.
var moneyPattern = regexp.MustCompile(`[\d,]+\.\d{2}`)

// FormatPrice extracts the money substring from a raw price capture and
// prefixes it with a dollar sign. When nothing in the string looks like a
// money amount the raw string is returned verbatim, so malformed prices
// still surface to the user instead of being dropped.
func FormatPrice(raw string) string {
	if raw == "" {
		return raw
	}
	if match := moneyPattern.FindString(raw); match != "" {
		return "$" + match
	}
	return raw
}
