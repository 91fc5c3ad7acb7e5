package dao

import (
	"chatline/chatline/sources/psql/models"
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// ErrEmptyMessage is returned for a candidate with neither text nor an
// attachment reference; such records are never persisted.
var ErrEmptyMessage = errors.New("message has neither text nor attachment")

type MessageDAO struct {
	DB *gorm.DB

	// Serializes Append so assigned ids are gap-free and strictly
	// increasing in commit order. The service runs as a single process,
	// so an in-process lock is the serialization point; the transaction
	// below keeps a failed insert from leaving a partial row.
	mu sync.Mutex
}

func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{DB: db}
}

// Append persists msg, assigns the next id in the log, and returns it.
func (dao *MessageDAO) Append(ctx context.Context, msg *models.Message) (int64, error) {
	if !msg.HasContent() {
		return 0, ErrEmptyMessage
	}

	dao.mu.Lock()
	defer dao.mu.Unlock()

	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int64
		if err := tx.Raw("SELECT COALESCE(MAX(id), 0) + 1 FROM messages").Scan(&next).Error; err != nil {
			return err
		}
		msg.ID = next
		return tx.Create(msg).Error
	})
	if err != nil {
		return 0, fmt.Errorf("append message: %w", err)
	}
	return msg.ID, nil
}

func (dao *MessageDAO) Get(ctx context.Context, id int64) (*models.Message, error) {
	var msg models.Message
	err := dao.DB.WithContext(ctx).First(&msg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkSeen flips the seen flag. It is idempotent: re-marking an already-seen
// record is not an error and still returns the record; transitioned reports
// whether this call performed the flip, so callers can suppress a repeat
// receipt broadcast.
func (dao *MessageDAO) MarkSeen(ctx context.Context, id int64) (msg *models.Message, transitioned bool, err error) {
	msg, err = dao.Get(ctx, id)
	if err != nil || msg == nil {
		return nil, false, err
	}
	if msg.Seen {
		return msg, false, nil
	}
	err = dao.DB.WithContext(ctx).Model(msg).Update("seen", true).Error
	if err != nil {
		return nil, false, fmt.Errorf("mark seen: %w", err)
	}
	msg.Seen = true
	return msg, true, nil
}

// ListAll returns the full log ordered by id ascending, for hydrating a
// newly connected client.
func (dao *MessageDAO) ListAll(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	err := dao.DB.WithContext(ctx).Order("id ASC").Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
