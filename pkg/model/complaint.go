package model

import (
	"time"

	"github.com/google/uuid"
)

type ComplaintStatus string

const (
	StatusPendiente  ComplaintStatus = "PENDIENTE"
	StatusEnRevision ComplaintStatus = "EN_REVISION"
	StatusResuelto   ComplaintStatus = "RESUELTO"
	StatusEnviadoADT ComplaintStatus = "ENVIADO_A_DT"
)

// KnownStatus reports whether s is one of the recognized complaint states.
func KnownStatus(s ComplaintStatus) bool {
	switch s {
	case StatusPendiente, StatusEnRevision, StatusResuelto, StatusEnviadoADT:
		return true
	}
	return false
}

// Complaint is the central record of the system. Its primary key is the
// human-facing code DN-XXXXXXXX; codes are never reused once committed.
type Complaint struct {
	Code           string           `gorm:"primaryKey;size:11"`
	CompanyID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Company        *Company         `gorm:"foreignKey:CompanyID"`
	ComplainantID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Complainant    *Complainant     `gorm:"foreignKey:ComplainantID"`
	ItemID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	Item           *Item            `gorm:"foreignKey:ItemID"`
	RelationID     uuid.UUID        `gorm:"type:uuid;not null"`
	Relation       *CompanyRelation `gorm:"foreignKey:RelationID"`
	TimeBucketID   uuid.UUID        `gorm:"type:uuid;not null"`
	TimeBucket     *TimeBucket      `gorm:"foreignKey:TimeBucketID"`
	Description    string           `gorm:"size:2000;not null"`
	RelationDetail string           `gorm:"size:50"`
	Status         ComplaintStatus  `gorm:"type:varchar(50);default:'PENDIENTE';index"`
	History        []StatusChange   `gorm:"foreignKey:ComplaintCode"`
	Attachments    []Attachment     `gorm:"foreignKey:ComplaintCode"`
	Messages       []ForumMessage   `gorm:"foreignKey:ComplaintCode"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StatusChange is one entry of the append-only audit trail. Rows are created
// exactly once per transition and never mutated or deleted.
type StatusChange struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ComplaintCode string          `gorm:"size:11;not null;index"`
	Status        ComplaintStatus `gorm:"type:varchar(50);not null"`
	CreatedAt     time.Time       `gorm:"index"`
}

// Attachment records one uploaded file. The physical bytes live in object
// storage under ObjectKey; URL is the public download location.
type Attachment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ComplaintCode string    `gorm:"size:11;not null;index"`
	ObjectKey     string    `gorm:"size:500;not null"`
	URL           string    `gorm:"size:500;not null"`
	Name          string    `gorm:"size:250;not null"`
	Description   string    `gorm:"size:500"`
	Size          int64     `gorm:"not null"`
	CreatedAt     time.Time
}

// ForumMessage is one message in the per-complaint conversation between the
// complainant and the triaging admins. AdminID is nil for complainant
// messages; the Read flag drives the unread badge on admin dashboards.
type ForumMessage struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ComplaintCode string     `gorm:"size:11;not null;index"`
	AdminID       *uuid.UUID `gorm:"type:uuid"`
	Admin         *Admin     `gorm:"foreignKey:AdminID"`
	Message       string     `gorm:"size:2000;not null"`
	Read          bool       `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

// FromAdmin reports whether the message was authored by an operator.
func (m *ForumMessage) FromAdmin() bool {
	return m.AdminID != nil
}
