// Package validator checks and cleans inbox input: contact form fields,
// message ids and page requests.
package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"
)

var (
	ErrEmptyInput   = errors.New("input cannot be empty")
	ErrInputTooLong = errors.New("input exceeds maximum length")
	ErrInvalidID    = errors.New("invalid message ID")
)

// MaxIDLength is the longest message id accepted from clients
const MaxIDLength = 128

var structValidator = playground.New(playground.WithRequiredStructEnabled())

// ValidateMessageID accepts 1-128 characters of letters, digits, '-' or '_'.
// Store-assigned UUIDs and fixture ids both fit.
func ValidateMessageID(id string) error {
	switch {
	case id == "":
		return ErrEmptyInput
	case len(id) > MaxIDLength:
		return ErrInputTooLong
	case strings.IndexFunc(id, notIDRune) >= 0:
		return ErrInvalidID
	}
	return nil
}

func notIDRune(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_')
}

// ValidateStruct runs the `validate` tags of v and reports the first failing
// field as a sentence such as "email must be a valid email address".
func ValidateStruct(v interface{}) error {
	err := structValidator.Struct(v)
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "email":
		return fmt.Errorf("%s must be a valid email address", field)
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of %s", field, fe.Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// AllowedPageSizes lists the page sizes the inbox serves, ascending
var AllowedPageSizes = []int{5, 10, 20, 50}

// NormalizePage maps any requested page and size onto a servable pair.
// Non-positive pages become 1; sizes go through CoercePageSize.
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	return page, CoercePageSize(pageSize)
}

// CoercePageSize snaps pageSize up to the nearest allowed size, capped at the
// largest. Non-positive sizes get DefaultPageSize.
func CoercePageSize(pageSize int) int {
	if pageSize <= 0 {
		return DefaultPageSize
	}
	for _, allowed := range AllowedPageSizes {
		if pageSize <= allowed {
			return allowed
		}
	}
	return AllowedPageSizes[len(AllowedPageSizes)-1]
}

// SanitizeString cleans a single-line field: every control character is
// dropped, surrounding space trimmed, and the result cut to maxLength runes.
// maxLength <= 0 means no limit.
func SanitizeString(input string, maxLength int) string {
	return clean(input, maxLength, false)
}

// SanitizeText is SanitizeString for message bodies; newlines and tabs are kept.
func SanitizeText(input string, maxLength int) string {
	return clean(input, maxLength, true)
}

func clean(input string, maxLength int, multiline bool) string {
	out := strings.TrimSpace(strings.Map(func(r rune) rune {
		if multiline && (r == '\n' || r == '\t') {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, input))

	if maxLength <= 0 || utf8.RuneCountInString(out) <= maxLength {
		return out
	}
	return string([]rune(out)[:maxLength])
}
