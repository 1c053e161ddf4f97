package wizard

import (
	"context"
	"regexp"
	"strings"

	"github.com/empresasintegra/leykarin/pkg/identifier"
	"github.com/empresasintegra/leykarin/pkg/model"
	"github.com/empresasintegra/leykarin/pkg/rut"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ComplainantInput is the identity payload of the final step.
type ComplainantInput struct {
	Anonymous bool
	RUT       string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// NormalizePhone canonicalizes a Chilean mobile number to +569XXXXXXXX.
// Accepted inputs: 12345678, 912345678, +56912345678 and separator variants.
func NormalizePhone(raw string) (string, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	switch {
	case len(digits) == 8:
		return "+569" + digits, true
	case len(digits) == 9 && strings.HasPrefix(digits, "9"):
		return "+56" + digits, true
	case len(digits) == 11 && strings.HasPrefix(digits, "569"):
		return "+" + digits, true
	default:
		return "", false
	}
}

// resolveComplainant finds or builds the complainant row for the commit.
//
// Anonymous submissions always create a fresh complainant with a new public
// id. Identified submissions normalize RUT and phone, then look up the RUT:
// an existing identified complainant gets its mutable fields updated, a new
// one is built with a fresh public id. The returned complainant is not yet
// persisted; the commit transaction does that.
func (w *Wizard) resolveComplainant(ctx context.Context, input ComplainantInput) (*model.Complainant, error) {
	if input.Anonymous {
		publicID, err := identifier.PublicID(ctx, w.complainants.PublicIDExists)
		if err != nil {
			return nil, err
		}
		return &model.Complainant{PublicID: publicID, Anonymous: true}, nil
	}

	fields := NewFieldErrors()

	canonicalRUT := ""
	if strings.TrimSpace(input.RUT) == "" {
		fields.Add("rut", "rut es requerido para usuarios no anónimos")
	} else {
		formatted, err := rut.Format(input.RUT)
		if err != nil {
			fields.Add("rut", err.Error())
		} else {
			canonicalRUT = formatted
		}
	}

	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		fields.Add("nombre", "nombre es requerido para usuarios no anónimos")
	}
	lastName := strings.TrimSpace(input.LastName)
	if lastName == "" {
		fields.Add("apellidos", "apellidos es requerido para usuarios no anónimos")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		fields.Add("correo", "correo es requerido para usuarios no anónimos")
	} else if !emailPattern.MatchString(email) {
		fields.Add("correo", "correo electrónico no válido")
	}

	phone := ""
	if strings.TrimSpace(input.Phone) != "" {
		normalized, ok := NormalizePhone(input.Phone)
		if !ok {
			fields.Add("celular", "formato inválido, use: 912345678 o +56912345678")
		}
		phone = normalized
	}

	if err := fields.Err(); err != nil {
		return nil, err
	}

	existing, err := w.complainants.FindByRUT(ctx, canonicalRUT)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Anonymous {
		existing.FirstName = &firstName
		existing.LastName = &lastName
		existing.Email = &email
		if phone != "" {
			existing.Phone = &phone
		}
		return existing, nil
	}

	publicID, err := identifier.PublicID(ctx, w.complainants.PublicIDExists)
	if err != nil {
		return nil, err
	}
	complainant := &model.Complainant{
		PublicID:  publicID,
		Anonymous: false,
		RUT:       &canonicalRUT,
		FirstName: &firstName,
		LastName:  &lastName,
		Email:     &email,
	}
	if phone != "" {
		complainant.Phone = &phone
	}
	return complainant, nil
}
