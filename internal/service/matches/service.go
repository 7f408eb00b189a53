package matches

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/udinder/internal/app"
	"github.com/oggyb/udinder/internal/db"
	svcErr "github.com/oggyb/udinder/internal/errors"
	"github.com/oggyb/udinder/internal/events"
	"github.com/oggyb/udinder/internal/logger"
	"github.com/oggyb/udinder/internal/repository"
)

var (
	ErrSelfLike      = svcErr.InvalidArgument("You cannot like yourself")
	ErrDuplicateLike = svcErr.AlreadyExists("You have already liked this user")
	ErrUserNotFound  = svcErr.NotFound("User not found")
	ErrMatchNotFound = svcErr.NotFound("Match not found")
)

// Service records directed likes and derives mutual matches from them.
//
// A mutual match is never stored. It exists while both A -> B and B -> A
// edges exist, so deleting either edge dissolves it.
type Service struct {
	appCtx   *app.AppContext
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
	matches  *repository.MatchRepository
}

// NewMatchService creates the service with repositories bound to AppContext.DB.
func NewMatchService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		users:    repository.NewUserRepository(appCtx.DB),
		profiles: repository.NewProfileRepository(appCtx.DB),
		matches:  repository.NewMatchRepository(appCtx.DB),
	}
}

// LikeResult is the outcome of a like: the stored edge and whether the
// reverse edge already existed.
type LikeResult struct {
	Match  *db.Match
	Mutual bool
}

// Like records userID -> likedUserID.
//
// Behavior:
//  1. Rejects self-likes and unknown users on either side.
//  2. Duplicate check, insert and reverse-edge lookup run in one transaction;
//     the unique (user_id, liked_user_id) index settles concurrent duplicates.
//  3. When the reverse edge exists a match.created event is published. A
//     publish failure is logged and does not fail the like.
func (s *Service) Like(ctx context.Context, userID, likedUserID uint64) (*LikeResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("Like called", "user_id", userID, "liked_user_id", likedUserID)

	if userID == likedUserID {
		return nil, ErrSelfLike
	}

	var res LikeResult
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		for _, id := range []uint64{userID, likedUserID} {
			ok, err := users.Exists(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return ErrUserNotFound
			}
		}

		matches := s.matches.WithTx(tx)
		liked, err := matches.HasLiked(ctx, userID, likedUserID)
		if err != nil {
			return err
		}
		if liked {
			return ErrDuplicateLike
		}

		m, err := matches.Create(ctx, userID, likedUserID)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateLike
		}
		if err != nil {
			return err
		}
		res.Match = m

		res.Mutual, err = matches.HasLiked(ctx, likedUserID, userID)
		return err
	})
	if err != nil {
		if svcErr.CodeOf(err) == svcErr.CodeInternal {
			log.Error("Like failed", "user_id", userID, "liked_user_id", likedUserID, "err", err)
		}
		return nil, svcErr.Map(err)
	}

	if res.Mutual {
		log.Info("mutual match", "user_id", userID, "peer_id", likedUserID)
		s.publish(ctx, events.Event{
			Type:     events.TypeMatchCreated,
			UserID:   userID,
			PeerID:   likedUserID,
			EntityID: res.Match.ID,
		})
	}
	return &res, nil
}

// ListMutualMatches returns the ids of users mutually matched with userID,
// in the order userID liked them.
//
// Every outgoing edge is kept only if its reverse edge exists, one lookup
// per edge.
func (s *Service) ListMutualMatches(ctx context.Context, userID uint64) ([]uint64, error) {
	outgoing, err := s.matches.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	ids := make([]uint64, 0, len(outgoing))
	for _, edge := range outgoing {
		back, err := s.matches.HasLiked(ctx, edge.LikedUserID, userID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		if back {
			ids = append(ids, edge.LikedUserID)
		}
	}
	return ids, nil
}

// Summary is the public card of a matched user.
type Summary struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListMatchSummaries hydrates ListMutualMatches with names and profile
// descriptions. Users without a profile get an empty description.
func (s *Service) ListMatchSummaries(ctx context.Context, userID uint64) ([]Summary, error) {
	ids, err := s.ListMutualMatches(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	byID := make(map[uint64]db.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	profiles, err := s.profiles.FindByUserIDs(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, Summary{ID: id, Name: u.Name, Description: profiles[id].Description})
	}
	return out, nil
}

// DeleteMatch removes one directed edge by id. The reverse edge stays.
func (s *Service) DeleteMatch(ctx context.Context, matchID uint64) (*db.Match, error) {
	m, err := s.matches.Delete(ctx, matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	logger.FromContext(ctx).Info("like edge deleted", "match_id", matchID, "user_id", m.UserID, "liked_user_id", m.LikedUserID)
	return m, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	e.Timestamp = s.appCtx.Now().UTC().Truncate(time.Second)
	if err := s.appCtx.Events.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn("event not published", "type", e.Type, "err", err)
	}
}
