package repository

import (
	"context"

	"github.com/oggyb/udinder/internal/db"

	"gorm.io/gorm"
)

// MatchRepository provides data access methods for the Match model.
// It encapsulates all queries related to directed likes between users.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// Create inserts the directed edge userID -> likedUserID.
//
// Behavior:
//   - The unique (user_id, liked_user_id) index is the authoritative duplicate
//     guard; a second insert of the same ordered pair returns gorm.ErrDuplicatedKey
//     (the DB must be opened with TranslateError).
//   - The reverse edge is independent and unaffected.
//
// Example:
//
//	repo.Create(ctx, 1, 2) // user 1 liked user 2
func (r *MatchRepository) Create(ctx context.Context, userID, likedUserID uint64) (*db.Match, error) {
	m := db.Match{UserID: userID, LikedUserID: likedUserID}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// HasLiked checks whether userID has a like edge towards likedUserID.
//
// Behavior:
//   - Returns true if a row exists with user_id = X and liked_user_id = Y.
//   - Used for duplicate detection and for reverse-edge (mutual) checks.
//
// Example:
//
//	repo.HasLiked(ctx, 1, 2) // -> true if user 1 liked user 2
func (r *MatchRepository) HasLiked(ctx context.Context, userID, likedUserID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_id = ? AND liked_user_id = ?", userID, likedUserID).
		Count(&count).Error
	return count > 0, err
}

// IsMutual reports whether a and b like each other; both directed edges are
// checked independently.
func (r *MatchRepository) IsMutual(ctx context.Context, a, b uint64) (bool, error) {
	ab, err := r.HasLiked(ctx, a, b)
	if err != nil || !ab {
		return false, err
	}
	return r.HasLiked(ctx, b, a)
}

// ListOutgoing returns every edge starting at userID, oldest first.
func (r *MatchRepository) ListOutgoing(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&matches).Error
	return matches, err
}

// Delete removes a single directed edge by id and returns it.
//
// Behavior:
//   - gorm.ErrRecordNotFound when no edge has this id.
//   - The reverse edge (if any) is left in place, which breaks mutuality.
func (r *MatchRepository) Delete(ctx context.Context, matchID uint64) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).First(&m, matchID).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&db.Match{}, m.ID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteForUser removes every edge touching userID in either direction.
func (r *MatchRepository) DeleteForUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? OR liked_user_id = ?", userID, userID).
		Delete(&db.Match{}).Error
}
