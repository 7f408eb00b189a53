package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/udinder/internal/app"
	"github.com/oggyb/udinder/internal/auth"
	"github.com/oggyb/udinder/internal/db"
	svcErr "github.com/oggyb/udinder/internal/errors"
	"github.com/oggyb/udinder/internal/logger"
	"github.com/oggyb/udinder/internal/repository"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

var (
	ErrUserNotFound       = svcErr.NotFound("User not found")
	ErrEmailTaken         = svcErr.AlreadyExists("Email already registered")
	ErrUserIDTaken        = svcErr.AlreadyExists("User id already registered")
	ErrInvalidEmail       = svcErr.InvalidArgument("email is not a valid address")
	ErrEmptyPassword      = svcErr.InvalidArgument("password must not be empty")
	ErrPasswordTooLong    = svcErr.InvalidArgument("password must be at most 72 bytes")
	ErrEmptyName          = svcErr.InvalidArgument("name must not be empty")
	ErrInvalidUserID      = svcErr.InvalidArgument("id must be a positive integer")
	ErrInvalidCredentials = svcErr.Unauthenticated("Invalid email or password")
)

// Service implements registration, authentication and the user CRUD surface.
// Passwords are stored as bcrypt hashes and compared with bcrypt on login.
type Service struct {
	appCtx   *app.AppContext
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
	admins   *repository.AdminRepository
	matches  *repository.MatchRepository
	messages *repository.MessageRepository
}

// NewUserService creates the service with repositories bound to AppContext.DB.
func NewUserService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		users:    repository.NewUserRepository(appCtx.DB),
		profiles: repository.NewProfileRepository(appCtx.DB),
		admins:   repository.NewAdminRepository(appCtx.DB),
		matches:  repository.NewMatchRepository(appCtx.DB),
		messages: repository.NewMessageRepository(appCtx.DB),
	}
}

// RegisterInput carries the registration fields. ID is chosen by the client.
type RegisterInput struct {
	ID          uint64
	Email       string
	Name        string
	Password    string
	Gender      string
	BirthDate   *time.Time
	Preferences string
	Location    string
}

// Patch enumerates exactly the mutable user fields. Nil or empty values are
// left untouched.
type Patch struct {
	Name        *string
	Password    *string
	Gender      *string
	Preferences *string
	Location    *string
	BirthDate   *time.Time
}

// LoginResult is a successful login: the user plus a bearer token.
type LoginResult struct {
	User      *db.User
	Token     string
	ExpiresAt time.Time
}

// Register creates the user and its empty profile in one transaction.
//
// Behavior:
//   - Rejects malformed email, empty name/password and a zero id.
//   - Rejects an email already present (exact match) and an id already taken.
//   - Age is derived from BirthDate before the row is written.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*db.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("Register called", "user_id", in.ID, "email", in.Email)

	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.appCtx.BcryptCost)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	user := &db.User{
		ID:           in.ID,
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Gender:       in.Gender,
		BirthDate:    in.BirthDate,
		Preferences:  in.Preferences,
		Location:     in.Location,
	}
	user.RefreshAge(s.appCtx.Now())

	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		taken, err := users.EmailExists(ctx, in.Email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		exists, err := users.Exists(ctx, in.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrUserIDTaken
		}

		return s.createWithProfile(ctx, tx, user)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent registration
		err = s.duplicateCause(ctx, in.ID)
	}
	if err != nil {
		if svcErr.CodeOf(err) == svcErr.CodeInternal {
			log.Error("Register failed", "err", err)
		}
		return nil, svcErr.Map(err)
	}

	log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *Service) createWithProfile(ctx context.Context, tx *gorm.DB, user *db.User) error {
	if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
		return err
	}
	_, err := s.profiles.WithTx(tx).CreateEmpty(ctx, user.ID)
	return err
}

// duplicateCause picks the message for a unique violation raised by the
// insert. It must run after the failed transaction has been rolled back.
func (s *Service) duplicateCause(ctx context.Context, id uint64) error {
	if exists, err := s.users.Exists(ctx, id); err == nil && exists {
		return ErrUserIDTaken
	}
	return ErrEmailTaken
}

// RegisterCheck reports whether any user has exactly this email.
func (s *Service) RegisterCheck(ctx context.Context, email string) (bool, error) {
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return false, svcErr.Map(err)
	}
	return taken, nil
}

// Authenticate returns the user whose email and password match.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	user.RefreshAge(s.appCtx.Now())
	return user, nil
}

// Login authenticates and issues a bearer token whose subject is the user id.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.FromContext(ctx)

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		log.Info("login rejected")
		return nil, err
	}

	token, exp, err := s.appCtx.Tokens.IssueForUser(user.ID)
	if err != nil {
		log.Error("token issue failed", "user_id", user.ID, "err", err)
		return nil, svcErr.Map(err)
	}

	log.Info("login succeeded", "user_id", user.ID)
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// Logout is stateless: issued tokens stay valid until they expire.
func (s *Service) Logout(ctx context.Context) {
	logger.FromContext(ctx).Debug("logout")
}

// List returns a page of users with recomputed ages.
func (s *Service) List(ctx context.Context, skip, limit int) ([]db.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	users, err := s.users.List(ctx, skip, limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	now := s.appCtx.Now()
	for i := range users {
		users[i].RefreshAge(now)
	}
	return users, nil
}

// Get returns one user with a recomputed age.
func (s *Service) Get(ctx context.Context, id uint64) (*db.User, error) {
	user, err := s.users.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	user.RefreshAge(s.appCtx.Now())
	return user, nil
}

// Update applies p to the user and persists it.
func (s *Service) Update(ctx context.Context, id uint64, p Patch) (*db.User, error) {
	var hash string
	if p.Password != nil && *p.Password != "" {
		if len(*p.Password) > auth.MaxPasswordBytes {
			return nil, ErrPasswordTooLong
		}
		h, err := auth.HashPassword(*p.Password, s.appCtx.BcryptCost)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		hash = h
	}

	var user *db.User
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		u, err := users.Get(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		applyPatch(u, p, hash)
		u.RefreshAge(s.appCtx.Now())
		user = u
		return users.Save(ctx, u)
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}

	logger.FromContext(ctx).Info("user updated", "user_id", id)
	return user, nil
}

// Delete removes the user together with its profile, admin mark, like edges
// and messages.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.users.WithTx(tx).Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		if err := s.messages.WithTx(tx).DeleteForUser(ctx, id); err != nil {
			return err
		}
		if err := s.matches.WithTx(tx).DeleteForUser(ctx, id); err != nil {
			return err
		}
		if err := s.admins.WithTx(tx).DeleteByUserID(ctx, id); err != nil {
			return err
		}
		if err := s.profiles.WithTx(tx).DeleteByUserID(ctx, id); err != nil {
			return err
		}
		return s.users.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return svcErr.Map(err)
	}

	logger.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}

// applyPatch merges the set fields of p into u. hash is the already hashed
// new password, empty when unchanged.
func applyPatch(u *db.User, p Patch, hash string) {
	set := func(dst *string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&u.Name, p.Name)
	set(&u.Gender, p.Gender)
	set(&u.Preferences, p.Preferences)
	set(&u.Location, p.Location)
	if p.BirthDate != nil {
		bd := *p.BirthDate
		u.BirthDate = &bd
	}
	if hash != "" {
		u.PasswordHash = hash
	}
}

func validateRegistration(in RegisterInput) error {
	if in.ID == 0 {
		return ErrInvalidUserID
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return ErrInvalidEmail
	}
	if in.Name == "" {
		return ErrEmptyName
	}
	if in.Password == "" {
		return ErrEmptyPassword
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
