package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/empresasintegra/leykarin/pkg/auth"
	"github.com/empresasintegra/leykarin/pkg/model"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByLogin accepts either username or email; logins with '@' are treated
// as email lookups.
func (r *AdminRepository) FindByLogin(ctx context.Context, login string) (*model.Admin, error) {
	column := "username"
	if strings.Contains(login, "@") {
		column = "email"
	}

	var admin model.Admin
	err := r.db.WithContext(ctx).First(&admin, column+" = ?", login).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).Preload("Category").First(&admin, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// Create enforces the password policy and stores the bcrypt hash; the plain
// password never reaches the row.
func (r *AdminRepository) Create(ctx context.Context, admin *model.Admin, password string) error {
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin.PasswordHash = hash
	return r.db.WithContext(ctx).Create(admin).Error
}

// SetPassword re-applies the policy on every password change.
func (r *AdminRepository) SetPassword(ctx context.Context, id string, password string) error {
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.Admin{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

// EmailsByCategory returns the notification targets for a new complaint:
// every admin scoped to the category plus every superuser.
func (r *AdminRepository) EmailsByCategory(ctx context.Context, categoryID string) ([]string, error) {
	var admins []model.Admin
	err := r.db.WithContext(ctx).
		Where("superuser = true OR category_id = ?", categoryID).
		Find(&admins).Error
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(admins))
	for _, admin := range admins {
		if admin.Email != "" {
			emails = append(emails, admin.Email)
		}
	}
	return emails, nil
}
