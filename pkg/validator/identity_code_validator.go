package validator

import (
	"fmt"
	"regexp"
	"time"

	"decision_engine/internal/domain"
)

// Estonian personal identification code (isikukood): GYYMMDDSSSC where G is
// the sex and century digit, YYMMDD the birth date, SSS a serial number and
// C the checksum.
const identityCodeLength = 11

var (
	checksumWeights1 = [10]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 1}
	checksumWeights2 = [10]int{3, 4, 5, 6, 7, 8, 9, 1, 2, 3}
)

type IdentityCodeValidator struct {
	format *regexp.Regexp
	now    func() time.Time
}

// NewIdentityCodeValidator returns a validator that measures ages against
// now. A nil clock uses time.Now.
func NewIdentityCodeValidator(now func() time.Time) *IdentityCodeValidator {
	if now == nil {
		now = time.Now
	}
	return &IdentityCodeValidator{
		format: regexp.MustCompile(`^[1-8]\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])\d{4}$`),
		now:    now,
	}
}

func (v *IdentityCodeValidator) Validate(code string) error {
	if !v.format.MatchString(code) {
		return fmt.Errorf("%w: expected %d digits in GYYMMDDSSSC form", domain.ErrInvalidIdentityCode, identityCodeLength)
	}

	if _, err := v.BirthDate(code); err != nil {
		return err
	}

	if want := checksum(code); int(code[10]-'0') != want {
		return fmt.Errorf("%w: checksum mismatch", domain.ErrInvalidIdentityCode)
	}

	return nil
}

// BirthDate derives the birth date from the century digit and YYMMDD.
func (v *IdentityCodeValidator) BirthDate(code string) (time.Time, error) {
	if len(code) < 7 || !isDigits(code[:7]) {
		return time.Time{}, fmt.Errorf("%w: birth date digits missing", domain.ErrInvalidIdentityCode)
	}

	century, err := centuryStart(code[0])
	if err != nil {
		return time.Time{}, err
	}

	year := century + atoi2(code[1:3])
	month := atoi2(code[3:5])
	day := atoi2(code[5:7])

	birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if birth.Year() != year || int(birth.Month()) != month || birth.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d is not a calendar date", domain.ErrInvalidIdentityCode, year, month, day)
	}
	return birth, nil
}

// AgeOf returns the applicant's age in whole years at the validator's clock.
func (v *IdentityCodeValidator) AgeOf(code string) (int, error) {
	birth, err := v.BirthDate(code)
	if err != nil {
		return 0, err
	}
	return yearsBetween(birth, v.now()), nil
}

func centuryStart(d byte) (int, error) {
	switch d {
	case '1', '2':
		return 1800, nil
	case '3', '4':
		return 1900, nil
	case '5', '6':
		return 2000, nil
	case '7', '8':
		return 2100, nil
	default:
		return 0, fmt.Errorf("%w: unknown century digit %q", domain.ErrInvalidIdentityCode, d)
	}
}

func checksum(code string) int {
	sum := weightedSum(code, checksumWeights1) % 11
	if sum != 10 {
		return sum
	}
	sum = weightedSum(code, checksumWeights2) % 11
	if sum == 10 {
		return 0
	}
	return sum
}

func weightedSum(code string, weights [10]int) int {
	var sum int
	for i, w := range weights {
		sum += int(code[i]-'0') * w
	}
	return sum
}

// yearsBetween counts completed years; a birthday falling on the current
// day counts as completed.
func yearsBetween(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
