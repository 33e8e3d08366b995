package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
)

var (
	// local@domain.tld, dot-atom local part, hostname labels
	emailPattern = regexp.MustCompile(
		"^[A-Za-z0-9.!#$%&'*+/=?^_`{|}~-]+@" +
			`[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?` +
			`(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)+$`)

	// E.164: plus sign, no leading zero, at most 15 digits
	phonePattern = regexp.MustCompile(`^\+[1-9][0-9]{0,14}$`)

	datePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

const dateLayout = "2006-01-02"

// IsEmail reports whether v is a well-formed, all-lowercase address
func IsEmail(v string) bool {
	return emailPattern.MatchString(v) && v == strings.ToLower(v)
}

// IsPhone reports whether v is an E.164 number
func IsPhone(v string) bool {
	return phonePattern.MatchString(v)
}

// IsDate reports whether v is a calendar-valid YYYY-MM-DD date
func IsDate(v string) bool {
	if !datePattern.MatchString(v) {
		return false
	}
	_, err := time.Parse(dateLayout, v)
	return err == nil
}

// IsBoolean reports whether v is exactly "true" or "false"
func IsBoolean(v string) bool {
	return v == "true" || v == "false"
}

// checkFormat applies f to a non-empty value and returns a reason on failure
func checkFormat(f catalog.Format, v string) (string, bool) {
	switch f {
	case catalog.FormatEmail:
		if !emailPattern.MatchString(v) {
			return "Invalid email " + v, false
		}
		if v != strings.ToLower(v) {
			return "Invalid email " + v + ": must be lowercase", false
		}
	case catalog.FormatPhone:
		if !IsPhone(v) {
			return "Invalid phone " + v + ": expected E.164 (+ and up to 15 digits)", false
		}
	case catalog.FormatDate:
		if !IsDate(v) {
			return "Invalid date " + v + ": expected YYYY-MM-DD", false
		}
	case catalog.FormatBoolean:
		if !IsBoolean(v) {
			return "Invalid boolean " + v + ": expected true or false", false
		}
	}
	return "", true
}
