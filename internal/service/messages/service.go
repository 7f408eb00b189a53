package messages

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/udinder/internal/app"
	"github.com/oggyb/udinder/internal/db"
	svcErr "github.com/oggyb/udinder/internal/errors"
	"github.com/oggyb/udinder/internal/events"
	"github.com/oggyb/udinder/internal/logger"
	"github.com/oggyb/udinder/internal/repository"
	"github.com/oggyb/udinder/internal/utils/pagination"
)

const MaxPageSize = 100

var (
	ErrReceiverNotFound = svcErr.NotFound("Receiver not found")
	ErrSenderNotFound   = svcErr.NotFound("Sender not found")
	ErrUserNotFound     = svcErr.NotFound("User not found")
	ErrMessageNotFound  = svcErr.NotFound("Message not found")
	ErrSelfMessage      = svcErr.InvalidArgument("You cannot send a message to yourself")
	ErrNoMatch          = svcErr.InvalidArgument("You can only message users you have matched with")
	ErrEmptyContent     = svcErr.InvalidArgument("content must not be empty")
	ErrInvalidPageToken = svcErr.InvalidArgument("invalid page token")
)

// Service sends messages between mutually matched users and serves the
// receiver-side inbox.
type Service struct {
	appCtx   *app.AppContext
	users    *repository.UserRepository
	matches  *repository.MatchRepository
	messages *repository.MessageRepository
}

func NewMessageService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		users:    repository.NewUserRepository(appCtx.DB),
		matches:  repository.NewMatchRepository(appCtx.DB),
		messages: repository.NewMessageRepository(appCtx.DB),
	}
}

// Send stores a message from senderID to receiverID.
//
// Behavior:
//   - ErrReceiverNotFound when the receiver has no user row.
//   - ErrSelfMessage when sender and receiver are the same user.
//   - ErrNoMatch unless both like edges between them exist.
//   - Publishes message.sent after the row is committed.
func (s *Service) Send(ctx context.Context, senderID, receiverID uint64, content string) (*db.Message, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	var msg *db.Message
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		ok, err := users.Exists(ctx, receiverID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrReceiverNotFound
		}
		if senderID == receiverID {
			return ErrSelfMessage
		}
		if ok, err = users.Exists(ctx, senderID); err != nil {
			return err
		} else if !ok {
			return ErrSenderNotFound
		}

		// a reciprocal match means both directed edges, not either one
		mutual, err := s.matches.WithTx(tx).IsMutual(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if !mutual {
			return ErrNoMatch
		}

		msg, err = s.messages.WithTx(tx).Create(ctx, senderID, receiverID, content)
		return err
	})
	if err != nil {
		if svcErr.CodeOf(err) == svcErr.CodeInternal {
			log.Error("Send failed", "sender_id", senderID, "receiver_id", receiverID, "err", err)
		}
		return nil, svcErr.Map(err)
	}

	log.Info("message sent", "message_id", msg.ID, "sender_id", senderID, "receiver_id", receiverID)
	ev := events.Event{
		Type:      events.TypeMessageSent,
		UserID:    senderID,
		PeerID:    receiverID,
		EntityID:  msg.ID,
		Timestamp: s.appCtx.Now().UTC().Truncate(time.Second),
	}
	if err := s.appCtx.Events.Publish(ctx, ev); err != nil {
		log.Warn("event not published", "type", ev.Type, "err", err)
	}
	return msg, nil
}

// ListForUser returns every message received by userID, oldest first.
// Messages the user sent are not part of the inbox.
func (s *Service) ListForUser(ctx context.Context, userID uint64) ([]db.Message, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	out, err := s.messages.ListByReceiver(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return out, nil
}

// Page is one slice of an inbox. NextToken is empty on the last page.
type Page struct {
	Messages  []db.Message
	NextToken string
}

// ListPage returns at most limit inbox messages after the position encoded
// in token. An empty token starts at the oldest message.
func (s *Service) ListPage(ctx context.Context, userID uint64, token string, limit int) (*Page, error) {
	cur, err := pagination.Decode(token)
	if err != nil {
		return nil, ErrInvalidPageToken
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	// one extra row tells whether another page follows
	rows, err := s.messages.ListByReceiverAfter(ctx, userID, cur.AfterID, limit+1)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	page := &Page{Messages: rows}
	if len(rows) > limit {
		page.Messages = rows[:limit]
		next, err := pagination.Encode(pagination.Cursor{AfterID: rows[limit-1].ID})
		if err != nil {
			return nil, svcErr.Map(err)
		}
		page.NextToken = next
	}
	return page, nil
}

// Delete removes a message and returns it.
func (s *Service) Delete(ctx context.Context, messageID uint64) (*db.Message, error) {
	m, err := s.messages.Delete(ctx, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	logger.FromContext(ctx).Info("message deleted", "message_id", messageID)
	return m, nil
}

func (s *Service) requireUser(ctx context.Context, userID uint64) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return svcErr.Map(err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}
