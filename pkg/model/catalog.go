package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a client tenant. Companies are created by operators and are
// read-only to complainants; every complaint is scoped to exactly one.
type Company struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// Category is the top level of the complaint taxonomy (e.g. "Acoso laboral").
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Items     []Item    `gorm:"foreignKey:CategoryID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is a concrete complaint type inside a category.
type Item struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	Category   *Category `gorm:"foreignKey:CategoryID"`
	Statement  string    `gorm:"size:500;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CompanyRelation enumerates the complainant's relationship to the company.
// The "Otro" variant requires a free-text elaboration at submission time.
type CompanyRelation struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Role      string    `gorm:"size:500;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOther reports whether this relation is the free-text "Otro" variant.
func (r *CompanyRelation) IsOther() bool {
	return strings.EqualFold(strings.TrimSpace(r.Role), "otro")
}

// TimeBucket enumerates how long ago the reported events occurred.
type TimeBucket struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Interval  string    `gorm:"size:250;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
