package repository

import (
	"context"

	"github.com/oggyb/udinder/internal/db"

	"gorm.io/gorm"
)

// MessageRepository stores point-to-point messages.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

func (r *MessageRepository) Create(ctx context.Context, senderID, receiverID uint64, content string) (*db.Message, error) {
	m := db.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByReceiver returns the inbox of receiverID. Sent messages are not
// included.
func (r *MessageRepository) ListByReceiver(ctx context.Context, receiverID uint64) ([]db.Message, error) {
	messages := []db.Message{}
	err := r.db.WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// ListByReceiverAfter returns at most limit inbox messages with id > afterID.
func (r *MessageRepository) ListByReceiverAfter(ctx context.Context, receiverID, afterID uint64, limit int) ([]db.Message, error) {
	messages := []db.Message{}
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND id > ?", receiverID, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// Delete removes a message and returns it; gorm.ErrRecordNotFound when absent.
func (r *MessageRepository) Delete(ctx context.Context, messageID uint64) (*db.Message, error) {
	var m db.Message
	if err := r.db.WithContext(ctx).First(&m, messageID).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&db.Message{}, m.ID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteForUser removes messages sent or received by userID.
func (r *MessageRepository) DeleteForUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&db.Message{}).Error
}
