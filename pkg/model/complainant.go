package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Complainant is the person filing complaints. A complainant is either
// anonymous (only a generated 5-character public id) or identified, in which
// case RUT, name, surname and email are all present. The RUT is stored in its
// canonical NN.NNN.NNN-D form and is unique among identified complainants.
type Complainant struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PublicID  string    `gorm:"size:5;uniqueIndex;not null"`
	Anonymous bool      `gorm:"not null;default:true"`
	RUT       *string   `gorm:"size:12;uniqueIndex"`
	FirstName *string   `gorm:"size:250"`
	LastName  *string   `gorm:"size:250"`
	Email     *string   `gorm:"size:250"`
	Phone     *string   `gorm:"size:15"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the complainant's full name, or an anonymous label
// carrying the public id.
func (c *Complainant) DisplayName() string {
	if c.Anonymous {
		return fmt.Sprintf("Usuario Anónimo (%s)", c.PublicID)
	}
	parts := make([]string, 0, 2)
	if c.FirstName != nil && *c.FirstName != "" {
		parts = append(parts, *c.FirstName)
	}
	if c.LastName != nil && *c.LastName != "" {
		parts = append(parts, *c.LastName)
	}
	return strings.Join(parts, " ")
}
