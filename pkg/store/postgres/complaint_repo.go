package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/empresasintegra/leykarin/pkg/model"
	"github.com/empresasintegra/leykarin/pkg/wizard"
)

type ComplaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

func (r *ComplaintRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// Commit persists complainant, complaint, the initial PENDIENTE history entry
// and the attachment rows in one transaction. A crash mid-step leaves nothing
// behind.
func (r *ComplaintRepository) Commit(ctx context.Context, commit *wizard.Commit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		complainant := commit.Complainant
		if complainant.ID == uuid.Nil {
			if err := tx.Create(complainant).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Save(complainant).Error; err != nil {
				return err
			}
		}

		commit.Complaint.ComplainantID = complainant.ID
		if err := tx.Create(commit.Complaint).Error; err != nil {
			return err
		}

		history := &model.StatusChange{
			ComplaintCode: commit.Complaint.Code,
			Status:        model.StatusPendiente,
		}
		if err := tx.Create(history).Error; err != nil {
			return err
		}

		if len(commit.Attachments) > 0 {
			if err := tx.CreateInBatches(commit.Attachments, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ComplaintRepository) GetByCode(ctx context.Context, code string) (*model.Complaint, error) {
	var complaint model.Complaint
	err := r.db.WithContext(ctx).
		Preload("Company").
		Preload("Complainant").
		Preload("Item").
		Preload("Item.Category").
		Preload("Relation").
		Preload("TimeBucket").
		Preload("Attachments").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&complaint, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *ComplaintRepository) ByComplainantPublicID(ctx context.Context, publicID string) ([]model.Complaint, error) {
	var complaints []model.Complaint
	err := r.db.WithContext(ctx).
		Joins("JOIN complainants ON complainants.id = complaints.complainant_id").
		Where("complainants.public_id = ?", publicID).
		Preload("Item").
		Preload("Item.Category").
		Order("complaints.created_at DESC").
		Find(&complaints).Error
	return complaints, err
}

// ListFilter scopes and pages the admin dashboard listing. CategoryID is the
// admin's category scope; empty means unrestricted.
type ListFilter struct {
	CategoryID string
	CompanyID  string
	Status     string
	Search     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

func (r *ComplaintRepository) List(ctx context.Context, filter ListFilter) ([]model.Complaint, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Complaint{}).
		Joins("JOIN items ON items.id = complaints.item_id")

	if filter.CategoryID != "" {
		query = query.Where("items.category_id = ?", filter.CategoryID)
	}
	if filter.CompanyID != "" {
		query = query.Where("complaints.company_id = ?", filter.CompanyID)
	}
	if filter.Status != "" {
		query = query.Where("complaints.status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"complaints.code ILIKE ? OR complaints.description ILIKE ? OR items.statement ILIKE ?",
			like, like, like,
		)
	}
	if filter.From != nil {
		query = query.Where("complaints.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("complaints.created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	var complaints []model.Complaint
	err := query.
		Preload("Company").
		Preload("Complainant").
		Preload("Item").
		Preload("Item.Category").
		Preload("Relation").
		Preload("TimeBucket").
		Preload("Attachments").
		Order("complaints.created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&complaints).Error

	return complaints, total, err
}

// Stats aggregates complaint counts by status and by category, honoring the
// admin's category scope.
type Stats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"por_estado"`
	ByCategory map[string]int64 `json:"por_categoria"`
}

func (r *ComplaintRepository) Stats(ctx context.Context, categoryID string) (*Stats, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Complaint{}).
			Joins("JOIN items ON items.id = complaints.item_id")
		if categoryID != "" {
			q = q.Where("items.category_id = ?", categoryID)
		}
		return q
	}

	stats := &Stats{ByStatus: map[string]int64{}, ByCategory: map[string]int64{}}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type statusRow struct {
		Status string
		Total  int64
	}
	var statusRows []statusRow
	if err := base().
		Select("complaints.status AS status, COUNT(*) AS total").
		Group("complaints.status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Status] = row.Total
	}

	type categoryRow struct {
		Name  string
		Total int64
	}
	var categoryRows []categoryRow
	if err := base().
		Joins("JOIN categories ON categories.id = items.category_id").
		Select("categories.name AS name, COUNT(*) AS total").
		Group("categories.name").
		Scan(&categoryRows).Error; err != nil {
		return nil, err
	}
	for _, row := range categoryRows {
		stats.ByCategory[row.Name] = row.Total
	}

	return stats, nil
}

var ErrUnknownStatus = errors.New("estado no válido")

// UpdateStatus transitions a complaint and appends the audit entry in the
// same transaction. History rows are never mutated afterwards.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, code string, status model.ComplaintStatus) error {
	if !model.KnownStatus(status) {
		return ErrUnknownStatus
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Complaint{}).
			Where("code = ?", code).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&model.StatusChange{ComplaintCode: code, Status: status}).Error
	})
}
