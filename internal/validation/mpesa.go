package validation

import "regexp"

// MpesaFormatMessage is shown whenever a number fails the format check.
const MpesaFormatMessage = "M-Pesa number must be in the format 2547XXXXXXXX"

var mpesaRegex = regexp.MustCompile(`^2547\d{8}$`)

// IsMpesaNumber reports whether number is 12 digits starting with 2547.
func IsMpesaNumber(number string) bool {
	return mpesaRegex.MatchString(number)
}
