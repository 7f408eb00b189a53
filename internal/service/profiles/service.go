package profiles

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/udinder/internal/app"
	"github.com/oggyb/udinder/internal/db"
	svcErr "github.com/oggyb/udinder/internal/errors"
	"github.com/oggyb/udinder/internal/logger"
	"github.com/oggyb/udinder/internal/repository"
)

// MaxPhotoBytes caps an uploaded photo.
const MaxPhotoBytes = 5 << 20

var (
	ErrUserNotFound    = svcErr.NotFound("User not found")
	ErrProfileNotFound = svcErr.NotFound("Profile not found")
	ErrPhotoNotFound   = svcErr.NotFound("Photo not found")
	ErrEmptyPhoto      = svcErr.InvalidArgument("photo must not be empty")
	ErrPhotoTooLarge   = svcErr.InvalidArgument("photo must be at most 5 MiB")
)

// Service mutates the one-to-one profile of a user.
type Service struct {
	appCtx   *app.AppContext
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
}

func NewProfileService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		users:    repository.NewUserRepository(appCtx.DB),
		profiles: repository.NewProfileRepository(appCtx.DB),
	}
}

// UploadPhoto replaces the stored photo of userID.
func (s *Service) UploadPhoto(ctx context.Context, userID uint64, photo []byte) error {
	if len(photo) == 0 {
		return ErrEmptyPhoto
	}
	if len(photo) > MaxPhotoBytes {
		return ErrPhotoTooLarge
	}
	err := s.mutate(ctx, userID, func(p *repository.ProfileRepository) error {
		return p.SetPhoto(ctx, userID, photo)
	})
	if err == nil {
		logger.FromContext(ctx).Info("photo uploaded", "user_id", userID, "bytes", len(photo))
	}
	return err
}

// SetDescription replaces the free-text description of userID.
func (s *Service) SetDescription(ctx context.Context, userID uint64, description string) error {
	description = strings.TrimSpace(description)
	return s.mutate(ctx, userID, func(p *repository.ProfileRepository) error {
		return p.SetDescription(ctx, userID, description)
	})
}

// SetInterests replaces the interests text of userID.
func (s *Service) SetInterests(ctx context.Context, userID uint64, interests string) error {
	interests = strings.TrimSpace(interests)
	return s.mutate(ctx, userID, func(p *repository.ProfileRepository) error {
		return p.SetInterests(ctx, userID, interests)
	})
}

// Get returns the profile of userID including the photo bytes.
func (s *Service) Get(ctx context.Context, userID uint64) (*db.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return p, nil
}

// Photo returns the raw photo bytes; ErrPhotoNotFound when none was uploaded.
func (s *Service) Photo(ctx context.Context, userID uint64) ([]byte, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(p.Photo) == 0 {
		return nil, ErrPhotoNotFound
	}
	return p.Photo, nil
}

// mutate checks that the user exists and runs fn against its profile in one
// transaction. A user without profile yields ErrProfileNotFound.
func (s *Service) mutate(ctx context.Context, userID uint64, fn func(*repository.ProfileRepository) error) error {
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.users.WithTx(tx).Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		if err := fn(s.profiles.WithTx(tx)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return svcErr.Map(err)
	}
	return nil
}
