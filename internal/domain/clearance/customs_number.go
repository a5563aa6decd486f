package clearance

import (
	"fmt"
	"regexp"

	"github.com/aduana/backend/internal/domain/shared"
)

// Customs numbers follow the Mexican pedimento grouping: two digits (year),
// two digits (customs office), four digits (patent), seven digits (serial),
// each group separated by exactly two spaces.
var customsNumberPattern = regexp.MustCompile(`^[0-9]{2}  [0-9]{2}  [0-9]{4}  [0-9]{7}$`)

// CustomsNumberExample is a well-formed customs number used in error messages
const CustomsNumberExample = "15  48  3009  0001234"

// ValidateCustomsNumber checks a customs number against the required grouping.
// An empty number is accepted: the field is optional until an order is brought
// under a clearance document.
func ValidateCustomsNumber(number string) error {
	if number == "" {
		return nil
	}
	if !customsNumberPattern.MatchString(number) {
		return shared.NewDomainError(ErrCodeCustomsNumberFormat,
			fmt.Sprintf("Customs number must match NN  NN  NNNN  NNNNNNN (e.g. %s)", CustomsNumberExample))
	}
	return nil
}

// IsValidCustomsNumber reports whether a non-empty number matches the required grouping
func IsValidCustomsNumber(number string) bool {
	return customsNumberPattern.MatchString(number)
}
