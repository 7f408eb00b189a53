package admin

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/udinder/internal/app"
	"github.com/oggyb/udinder/internal/auth"
	"github.com/oggyb/udinder/internal/db"
	svcErr "github.com/oggyb/udinder/internal/errors"
	"github.com/oggyb/udinder/internal/logger"
	"github.com/oggyb/udinder/internal/repository"
)

var (
	ErrUnauthorized  = svcErr.Unauthenticated("Unauthorized")
	ErrInvalidToken  = svcErr.Unauthenticated("Could not validate credentials")
	ErrNotAdmin      = svcErr.Unauthenticated("Not an admin")
	ErrBlockedAdmin  = svcErr.PermissionDenied("Admin is blocked")
	ErrAlreadyAdmin  = svcErr.AlreadyExists("User is already an admin")
	ErrSelfBlock     = svcErr.InvalidArgument("You cannot block yourself")
	ErrUserNotFound  = svcErr.NotFound("User not found")
	ErrAdminNotFound = svcErr.NotFound("Admin entry not found")
)

// Service manages admin marks and the blocked flag stored on them.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	admins *repository.AdminRepository
}

func NewAdminService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		admins: repository.NewAdminRepository(appCtx.DB),
	}
}

// Promote marks userID as an unblocked admin.
func (s *Service) Promote(ctx context.Context, userID uint64) (*db.Admin, error) {
	var created *db.Admin
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.users.WithTx(tx).Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}

		admins := s.admins.WithTx(tx)
		_, err = admins.GetByUserID(ctx, userID)
		if err == nil {
			return ErrAlreadyAdmin
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		created, err = admins.Create(ctx, userID)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyAdmin
		}
		return err
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	logger.FromContext(ctx).Info("admin created", "user_id", userID)
	return created, nil
}

// Authorize resolves a bearer token to an active admin principal.
//
// Behavior:
//   - empty token → ErrUnauthorized
//   - bad signature, expired or no subject → ErrInvalidToken
//   - subject has no admin row → ErrNotAdmin
//   - admin row is blocked → ErrBlockedAdmin
func (s *Service) Authorize(ctx context.Context, token string) (*db.Admin, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	userID, err := s.appCtx.Tokens.ParseUserID(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, ErrInvalidToken
		}
		return nil, svcErr.Map(err)
	}

	a, err := s.admins.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotAdmin
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if a.IsBlocked {
		return nil, ErrBlockedAdmin
	}
	return a, nil
}

// Block sets is_blocked on the admin row of userID. An admin cannot block
// their own row, so at least the acting admin stays able to unblock.
func (s *Service) Block(ctx context.Context, actor *db.Admin, userID uint64) (*db.Admin, error) {
	if actor != nil && actor.UserID == userID {
		return nil, ErrSelfBlock
	}
	return s.setBlocked(ctx, actor, userID, true)
}

// Unblock clears is_blocked on the admin row of userID.
func (s *Service) Unblock(ctx context.Context, actor *db.Admin, userID uint64) (*db.Admin, error) {
	return s.setBlocked(ctx, actor, userID, false)
}

func (s *Service) setBlocked(ctx context.Context, actor *db.Admin, userID uint64, blocked bool) (*db.Admin, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	a, err := s.admins.SetBlocked(ctx, userID, blocked)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	logger.FromContext(ctx).Info("admin block flag changed",
		"actor_user_id", actor.UserID, "user_id", userID, "blocked", blocked)
	return a, nil
}
