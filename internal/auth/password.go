package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when a login names an unknown email so that
// the response time does not reveal whether the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("kanmind-dummy-password"), bcrypt.MinCost)

// CheckDummyPassword burns one bcrypt comparison and always reports false.
func CheckDummyPassword(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return false
}

// Password policy messages, returned verbatim to API clients.
const (
	MsgPasswordTooShort   = "This password is too short. It must contain at least 8 characters."
	MsgPasswordNumeric    = "This password is entirely numeric."
	MsgPasswordCommon     = "This password is too common."
	MsgPasswordTooSimilar = "The password is too similar to the personal information."
)

var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		password password1 password123 passw0rd 12345678 123456789 1234567890
		qwerty123 qwertyuiop 11111111 00000000 iloveyou abc12345 abcd1234
		football baseball sunshine princess welcome welcome1 admin123 letmein1
		trustno1 dragon123 monkey123 master123 superman starwars whatever
		1q2w3e4r zaq12wsx asdfghjkl computer michelle jennifer internet
		changeme secret123 qazwsxedc 987654321 88888888 12341234 kanmind123
	`) {
		commonPasswords[p] = struct{}{}
	}
}

// ValidatePassword applies the registration password policy and returns a
// message per violated rule. attributes are personal values (email, full
// name) the password must not resemble.
func ValidatePassword(password string, attributes ...string) []string {
	var errs []string

	if len([]rune(password)) < MinPasswordLength {
		errs = append(errs, MsgPasswordTooShort)
	}
	if password != "" && isNumeric(password) {
		errs = append(errs, MsgPasswordNumeric)
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		errs = append(errs, MsgPasswordCommon)
	}
	if tooSimilar(password, attributes) {
		errs = append(errs, MsgPasswordTooSimilar)
	}
	return errs
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tooSimilar reports whether password contains, or is contained in, a
// personal attribute part of at least four characters. Emails contribute the
// local part and its words; names contribute each word.
func tooSimilar(password string, attributes []string) bool {
	pw := strings.ToLower(password)
	if pw == "" {
		return false
	}
	for _, attr := range attributes {
		for _, part := range attributeParts(strings.ToLower(attr)) {
			if len(part) < 4 {
				continue
			}
			if strings.Contains(pw, part) {
				return true
			}
			if len(pw) >= MinPasswordLength && strings.Contains(part, pw) {
				return true
			}
		}
	}
	return false
}

func attributeParts(attr string) []string {
	if local, _, ok := strings.Cut(attr, "@"); ok {
		attr = local
	}
	parts := []string{attr}
	return append(parts, strings.FieldsFunc(attr, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})...)
}
