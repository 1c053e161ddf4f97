package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

var (
	ErrPasswordTooShort = errors.New("la contraseña debe tener al menos 8 caracteres")
	ErrPasswordNoUpper  = errors.New("la contraseña debe tener al menos una letra mayúscula")
	ErrPasswordNoDigit  = errors.New("la contraseña debe tener al menos un número")
	ErrPasswordNoSymbol = errors.New(`la contraseña debe tener al menos un símbolo (!@#$%^&*(),.?":{}|<>)`)
)

// ValidatePassword enforces the admin password policy at set-password time.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	var hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	if !hasUpper {
		return ErrPasswordNoUpper
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	if !hasSymbol {
		return ErrPasswordNoSymbol
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
