package repository

import (
	"context"

	"github.com/oggyb/udinder/internal/db"

	"gorm.io/gorm"
)

// UserRepository is the credential store: user rows keyed by their
// client-supplied id.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// Get returns gorm.ErrRecordNotFound when id is unknown.
func (r *UserRepository) Get(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Exists reports whether a user row with id exists.
func (r *UserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// EmailExists is an exact, case-sensitive match on email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// FindByEmail returns gorm.ErrRecordNotFound when no user has email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns up to limit users ordered by id, skipping the first skip rows.
func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&users).Error
	return users, err
}

// FindByIDs loads users by id; unknown ids are skipped.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint64) ([]db.User, error) {
	var users []db.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error
	return users, err
}

// Save writes every column of u.
func (r *UserRepository) Save(ctx context.Context, u *db.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// Delete removes the user row only; callers cascade dependents first.
func (r *UserRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&db.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
