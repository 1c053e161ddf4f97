package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/empresasintegra/leykarin/pkg/model"
)

type ForumRepository struct {
	db *gorm.DB
}

func NewForumRepository(db *gorm.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

// Append records a new message. Admin messages are born read; complainant
// messages start unread so they badge the dashboard.
func (r *ForumRepository) Append(ctx context.Context, message *model.ForumMessage) error {
	message.Read = message.FromAdmin()
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *ForumRepository) List(ctx context.Context, code string) ([]model.ForumMessage, error) {
	var messages []model.ForumMessage
	err := r.db.WithContext(ctx).
		Preload("Admin").
		Where("complaint_code = ?", code).
		Order("created_at").
		Find(&messages).Error
	return messages, err
}

// MarkRead flags every complainant message of a complaint as read.
func (r *ForumRepository) MarkRead(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&model.ForumMessage{}).
		Where("complaint_code = ? AND admin_id IS NULL", code).
		Update("read", true).Error
}

// UnreadCount counts unread complainant messages across the admin's scope.
func (r *ForumRepository) UnreadCount(ctx context.Context, categoryID string) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.ForumMessage{}).
		Joins("JOIN complaints ON complaints.code = forum_messages.complaint_code").
		Joins("JOIN items ON items.id = complaints.item_id").
		Where("forum_messages.read = false AND forum_messages.admin_id IS NULL")
	if categoryID != "" {
		query = query.Where("items.category_id = ?", categoryID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
