package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/empresasintegra/leykarin/pkg/model"
)

type ComplainantRepository struct {
	db *gorm.DB
}

func NewComplainantRepository(db *gorm.DB) *ComplainantRepository {
	return &ComplainantRepository{db: db}
}

// FindByRUT looks up an identified complainant by canonical RUT.
func (r *ComplainantRepository) FindByRUT(ctx context.Context, canonical string) (*model.Complainant, error) {
	var complainant model.Complainant
	err := r.db.WithContext(ctx).
		Where("rut = ? AND anonymous = false", canonical).
		First(&complainant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complainant, nil
}

func (r *ComplainantRepository) FindByPublicID(ctx context.Context, publicID string) (*model.Complainant, error) {
	var complainant model.Complainant
	err := r.db.WithContext(ctx).First(&complainant, "public_id = ?", publicID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complainant, nil
}

func (r *ComplainantRepository) PublicIDExists(ctx context.Context, publicID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Complainant{}).
		Where("public_id = ?", publicID).
		Count(&count).Error
	return count > 0, err
}
