package repositories

import (
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
	"gorm.io/gorm"
)

// ReceiptRepository defines the interface for per-recipient delivery
// state. All transitions are monotonic (sent -> delivered -> read);
// downgrade writes are filtered out in SQL so concurrent fetchers
// cannot regress each other's state.
type ReceiptRepository interface {
	CreateReceipts(receipts []models.MessageReceipt) error
	MarkAllDelivered(recipientID uint) error
	MarkRead(messageIDs []string, recipientID uint) error
	GetByMessageIDs(messageIDs []string) ([]models.MessageReceipt, error)
	GetUnreadSince(recipientID uint, since time.Time) ([]models.MessageReceipt, error)
	CountUnreadInChannel(channelID, recipientID uint) (int64, error)
	CountUnreadInThread(threadID, recipientID uint) (int64, error)
}

// PostgresReceiptRepository implements ReceiptRepository for PostgreSQL
type PostgresReceiptRepository struct {
	db *gorm.DB
}

// NewPostgresReceiptRepository creates a new PostgresReceiptRepository
func NewPostgresReceiptRepository(db *gorm.DB) *PostgresReceiptRepository {
	return &PostgresReceiptRepository{db: db}
}

// CreateReceipts inserts the initial "sent" rows, one per recipient
func (r *PostgresReceiptRepository) CreateReceipts(receipts []models.MessageReceipt) error {
	if len(receipts) == 0 {
		return nil
	}
	return r.db.Create(&receipts).Error
}

// MarkAllDelivered advances every "sent" receipt of the recipient to
// "delivered". Called when the client fetches its conversation index:
// a fetched list is the delivery acknowledgement.
func (r *PostgresReceiptRepository) MarkAllDelivered(recipientID uint) error {
	now := time.Now()
	return r.db.Model(&models.MessageReceipt{}).
		Where("recipient_id = ? AND status = ?", recipientID, models.StatusSent).
		Updates(map[string]interface{}{
			"status":       models.StatusDelivered,
			"delivered_at": now,
		}).Error
}

// MarkRead advances the recipient's receipts for the given messages to
// "read", filling delivered_at for receipts that skip the delivered
// step. Already-read rows are untouched.
func (r *PostgresReceiptRepository) MarkRead(messageIDs []string, recipientID uint) error {
	if len(messageIDs) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.Model(&models.MessageReceipt{}).
		Where("message_id IN ? AND recipient_id = ? AND status <> ?", messageIDs, recipientID, models.StatusRead).
		Updates(map[string]interface{}{
			"status":       models.StatusRead,
			"read_at":      now,
			"delivered_at": gorm.Expr("COALESCE(delivered_at, ?)", now),
		}).Error
}

// GetByMessageIDs retrieves all receipts of the given messages
func (r *PostgresReceiptRepository) GetByMessageIDs(messageIDs []string) ([]models.MessageReceipt, error) {
	var receipts []models.MessageReceipt
	if len(messageIDs) == 0 {
		return receipts, nil
	}
	err := r.db.Where("message_id IN ?", messageIDs).Find(&receipts).Error
	return receipts, err
}

// GetUnreadSince retrieves the recipient's not-yet-read receipts
// created after the cutoff, newest first
func (r *PostgresReceiptRepository) GetUnreadSince(recipientID uint, since time.Time) ([]models.MessageReceipt, error) {
	var receipts []models.MessageReceipt
	err := r.db.
		Where("recipient_id = ? AND status <> ? AND created_at >= ?", recipientID, models.StatusRead, since).
		Order("created_at DESC").
		Find(&receipts).Error
	return receipts, err
}

// CountUnreadInChannel counts the recipient's unread messages in a channel
func (r *PostgresReceiptRepository) CountUnreadInChannel(channelID, recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.MessageReceipt{}).
		Where("channel_id = ? AND recipient_id = ? AND status <> ?", channelID, recipientID, models.StatusRead).
		Count(&count).Error
	return count, err
}

// CountUnreadInThread counts the recipient's unread messages in a DM thread
func (r *PostgresReceiptRepository) CountUnreadInThread(threadID, recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.MessageReceipt{}).
		Where("thread_id = ? AND recipient_id = ? AND status <> ?", threadID, recipientID, models.StatusRead).
		Count(&count).Error
	return count, err
}
