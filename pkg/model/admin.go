package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Admin is an authenticated operator. A superuser sees every complaint; a
// category-scoped admin (CategoryID set) sees only complaints whose item
// belongs to that category.
type Admin struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string     `gorm:"size:150;uniqueIndex;not null"`
	Email        string     `gorm:"size:250;uniqueIndex;not null"`
	Name         string     `gorm:"size:250"`
	PasswordHash string     `gorm:"size:100;not null"`
	Superuser    bool       `gorm:"not null;default:false"`
	CategoryID   *uuid.UUID `gorm:"type:uuid"`
	Category     *Category  `gorm:"foreignKey:CategoryID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// Notification is the audit record of one outbound email, written after the
// send attempt regardless of the complaint transaction.
type Notification struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ComplaintCode string         `gorm:"size:11;index"`
	Recipients    pq.StringArray `gorm:"type:text[];not null"`
	CC            pq.StringArray `gorm:"type:text[]"`
	Subject       string         `gorm:"size:250;not null"`
	Delivered     bool           `gorm:"not null"`
	Error         string         `gorm:"size:500"`
	CreatedAt     time.Time
}
