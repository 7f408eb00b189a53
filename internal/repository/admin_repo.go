package repository

import (
	"context"

	"github.com/oggyb/udinder/internal/db"

	"gorm.io/gorm"
)

// AdminRepository stores admin marks on users.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(database *gorm.DB) *AdminRepository {
	return &AdminRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *AdminRepository) WithTx(tx *gorm.DB) *AdminRepository {
	return &AdminRepository{db: tx}
}

// Create inserts an unblocked admin row. The unique user_id index makes a
// second insert fail with gorm.ErrDuplicatedKey.
func (r *AdminRepository) Create(ctx context.Context, userID uint64) (*db.Admin, error) {
	a := db.Admin{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByUserID returns gorm.ErrRecordNotFound when userID is not an admin.
func (r *AdminRepository) GetByUserID(ctx context.Context, userID uint64) (*db.Admin, error) {
	var a db.Admin
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// SetBlocked flips is_blocked on the admin row of userID.
func (r *AdminRepository) SetBlocked(ctx context.Context, userID uint64, blocked bool) (*db.Admin, error) {
	a, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(a).Update("is_blocked", blocked).Error; err != nil {
		return nil, err
	}
	a.IsBlocked = blocked
	return a, nil
}

func (r *AdminRepository) DeleteByUserID(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&db.Admin{}).Error
}
