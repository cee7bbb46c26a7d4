package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmailFormat = errors.New("invalid email format")
	ErrEmailDomain = errors.New("invalid email domain")
)

// Rules of the HTML "valid email address", as checked by <input type="email">.
var (
	localPart   = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+$")
	domainLabel = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
)

// Email checks the shape an email input field accepts: one "@", a local
// part and a domain of one or more labels. Dotless domains such as
// "localhost" pass. It never resolves the domain.
func Email(email string) error {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || !localPart.MatchString(local) {
		return ErrEmailFormat
	}
	if domain == "" || strings.Contains(domain, "@") {
		return ErrEmailFormat
	}

	for _, label := range strings.Split(domain, ".") {
		if !domainLabel.MatchString(label) {
			return ErrEmailDomain
		}
	}

	return nil
}
