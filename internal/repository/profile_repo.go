package repository

import (
	"context"

	"github.com/oggyb/udinder/internal/db"

	"gorm.io/gorm"
)

// ProfileRepository stores the one-to-one profile extension of a user.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

// CreateEmpty creates the blank profile that follows every registration.
func (r *ProfileRepository) CreateEmpty(ctx context.Context, userID uint64) (*db.Profile, error) {
	p := db.Profile{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUserID returns gorm.ErrRecordNotFound when the user has no profile.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uint64) (*db.Profile, error) {
	var p db.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByUserIDs returns profiles keyed by user id.
func (r *ProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uint64) (map[uint64]db.Profile, error) {
	out := make(map[uint64]db.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var profiles []db.Profile
	if err := r.db.WithContext(ctx).
		Omit("photo").
		Where("user_id IN ?", userIDs).
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

// SetPhoto replaces the photo bytes.
func (r *ProfileRepository) SetPhoto(ctx context.Context, userID uint64, photo []byte) error {
	return r.update(ctx, userID, "photo", photo)
}

// SetDescription replaces the free-text description.
func (r *ProfileRepository) SetDescription(ctx context.Context, userID uint64, description string) error {
	return r.update(ctx, userID, "description", description)
}

// SetInterests replaces the interests text.
func (r *ProfileRepository) SetInterests(ctx context.Context, userID uint64, interests string) error {
	return r.update(ctx, userID, "interests", interests)
}

func (r *ProfileRepository) update(ctx context.Context, userID uint64, column string, value any) error {
	res := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ?", userID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// some drivers report 0 affected rows for an unchanged value
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.Profile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&db.Profile{}).Error
}
