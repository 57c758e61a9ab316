package repositories

import (
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationListFilter narrows a persisted-notification listing.
type NotificationListFilter struct {
	UnreadOnly bool
	Type       string
	Page       int
	Limit      int
}

// NotificationRepository defines the interface for persisted
// notification operations. Every mutation is scoped to the recipient
// so one user can never touch another's rows.
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetByRecipientID(recipientID uint, filter NotificationListFilter) ([]models.Notification, int64, error)
	GetGrouped(recipientID uint) (today, yesterday, thisWeek, older []models.Notification, err error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAsRead(notificationID, recipientID uint) error
	MarkAllAsRead(recipientID uint) error
	Delete(notificationID, recipientID uint) error
	DeleteRead(recipientID uint) error
	DeleteAll(recipientID uint) error
	HasRecentForPair(recipientID, senderID uint, entityType, entityID string, window time.Duration) (bool, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) GetByRecipientID(recipientID uint, filter NotificationListFilter) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	q := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if filter.UnreadOnly {
		q = q.Where("is_read = false")
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	q = q.Where("expires_at IS NULL OR expires_at > ?", time.Now())

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetGrouped(recipientID uint) (today, yesterday, thisWeek, older []models.Notification, retErr error) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	if err := r.db.Where("recipient_id = ? AND created_at >= ?", recipientID, todayStart).
		Order("created_at DESC").Find(&today).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	if err := r.db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, yesterdayStart, todayStart).
		Order("created_at DESC").Find(&yesterday).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	if err := r.db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, weekStart, yesterdayStart).
		Order("created_at DESC").Find(&thisWeek).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	if err := r.db.Where("recipient_id = ? AND created_at < ?", recipientID, weekStart).
		Order("created_at DESC").Limit(50).Find(&older).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	return today, yesterday, thisWeek, older, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = false", recipientID).Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkAsRead(notificationID, recipientID uint) error {
	now := time.Now()
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(recipientID uint) error {
	now := time.Now()
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (r *postgresNotificationRepository) Delete(notificationID, recipientID uint) error {
	return r.db.Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Delete(&models.Notification{}).Error
}

func (r *postgresNotificationRepository) DeleteRead(recipientID uint) error {
	return r.db.Where("recipient_id = ? AND is_read = true", recipientID).
		Delete(&models.Notification{}).Error
}

func (r *postgresNotificationRepository) DeleteAll(recipientID uint) error {
	return r.db.Where("recipient_id = ?", recipientID).
		Delete(&models.Notification{}).Error
}

// HasRecentForPair reports whether a notification for the same
// (entity, sender, recipient) triple was written inside the window.
// This is the suppression check that keeps a 2-second poll from
// re-alerting on every new message of an ongoing conversation.
func (r *postgresNotificationRepository) HasRecentForPair(recipientID, senderID uint, entityType, entityID string, window time.Duration) (bool, error) {
	var count int64
	cutoff := time.Now().Add(-window)
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND related_user_id = ? AND entity_type = ? AND entity_id = ? AND created_at >= ?",
			recipientID, senderID, entityType, entityID, cutoff).
		Count(&count).Error
	return count > 0, err
}
