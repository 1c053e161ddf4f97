// Package rut validates and canonicalizes Chilean national identity numbers.
package rut

import (
	"errors"
	"strings"
)

var (
	ErrLength     = errors.New("RUT debe tener entre 8 y 9 dígitos")
	ErrBody       = errors.New("RUT contiene caracteres no numéricos")
	ErrCheckDigit = errors.New("RUT inválido")
	ErrEmpty      = errors.New("RUT requerido")
)

// clean strips the separators accepted on input.
func clean(raw string) string {
	replacer := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(replacer.Replace(strings.TrimSpace(raw)))
}

// CheckDigit computes the verifier character for a numeric RUT body using the
// standard weighted modulo-11 algorithm: weights cycle 2..7 from the rightmost
// digit, and 11-(sum mod 11) maps 11 to '0' and 10 to 'K'.
func CheckDigit(body string) (byte, error) {
	if body == "" {
		return 0, ErrBody
	}
	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		d := body[i]
		if d < '0' || d > '9' {
			return 0, ErrBody
		}
		sum += int(d-'0') * weight
		weight++
		if weight == 8 {
			weight = 2
		}
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + dv), nil
	}
}

// Validate checks a RUT in any accepted format (with or without dots and
// dash) against its verifier character.
func Validate(raw string) error {
	cleaned := clean(raw)
	if cleaned == "" {
		return ErrEmpty
	}
	if len(cleaned) < 8 || len(cleaned) > 9 {
		return ErrLength
	}
	body, dv := cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1]
	want, err := CheckDigit(body)
	if err != nil {
		return err
	}
	if dv != want {
		return ErrCheckDigit
	}
	return nil
}

// Format validates raw and returns the canonical NN.NNN.NNN-D representation.
// Formatting an already-canonical RUT yields the same string.
func Format(raw string) (string, error) {
	if err := Validate(raw); err != nil {
		return "", err
	}
	cleaned := clean(raw)
	body, dv := cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1]

	var b strings.Builder
	for i, d := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteByte('-')
	b.WriteByte(dv)
	return b.String(), nil
}
