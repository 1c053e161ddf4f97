package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/empresasintegra/leykarin/pkg/model"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CompanyByName matches ignoring case and internal whitespace, so the public
// form can submit the name the way the client renders it.
func (r *CatalogRepository) CompanyByName(ctx context.Context, name string) (*model.Company, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(name), ""))
	var company model.Company
	err := r.db.WithContext(ctx).
		Where("lower(replace(name, ' ', '')) = ?", normalized).
		First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CatalogRepository) Companies(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	err := r.db.WithContext(ctx).Order("name").Find(&companies).Error
	return companies, err
}

func (r *CatalogRepository) CategoriesWithItems(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Preload("Items").Order("name").Find(&categories).Error
	return categories, err
}

func (r *CatalogRepository) Item(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).Preload("Category").First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepository) Relation(ctx context.Context, id string) (*model.CompanyRelation, error) {
	var relation model.CompanyRelation
	err := r.db.WithContext(ctx).First(&relation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &relation, nil
}

func (r *CatalogRepository) Relations(ctx context.Context) ([]model.CompanyRelation, error) {
	var relations []model.CompanyRelation
	err := r.db.WithContext(ctx).Order("role").Find(&relations).Error
	return relations, err
}

func (r *CatalogRepository) TimeBucket(ctx context.Context, id string) (*model.TimeBucket, error) {
	var bucket model.TimeBucket
	err := r.db.WithContext(ctx).First(&bucket, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (r *CatalogRepository) TimeBuckets(ctx context.Context) ([]model.TimeBucket, error) {
	var buckets []model.TimeBucket
	err := r.db.WithContext(ctx).Order("created_at").Find(&buckets).Error
	return buckets, err
}
