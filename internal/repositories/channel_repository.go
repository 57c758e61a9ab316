package repositories

import (
	"github.com/arafat90/clientflow/backend/internal/models"
	"gorm.io/gorm"
)

// ChannelRepository defines the interface for channel data operations
type ChannelRepository interface {
	CreateChannel(channel *models.Channel, memberIDs []uint) error
	GetChannelByID(id uint) (*models.Channel, error)
	GetChannelsForUser(userID uint) ([]models.Channel, error)
	GetMemberIDs(channelID uint) ([]uint, error)
	CountMembers(channelID uint) (int64, error)
	IsMember(channelID, userID uint) (bool, error)
	AddMember(channelID, userID uint) error
}

// PostgresChannelRepository implements ChannelRepository for PostgreSQL
type PostgresChannelRepository struct {
	db *gorm.DB
}

// NewPostgresChannelRepository creates a new PostgresChannelRepository
func NewPostgresChannelRepository(db *gorm.DB) *PostgresChannelRepository {
	return &PostgresChannelRepository{db: db}
}

// CreateChannel creates a channel together with its initial member set.
// The creator is always a member, whether or not it appears in memberIDs.
func (r *PostgresChannelRepository) CreateChannel(channel *models.Channel, memberIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(channel).Error; err != nil {
			return err
		}
		seen := map[uint]bool{channel.CreatedBy: true}
		members := []models.ChannelMember{{ChannelID: channel.ID, UserID: channel.CreatedBy}}
		for _, id := range memberIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			members = append(members, models.ChannelMember{ChannelID: channel.ID, UserID: id})
		}
		return tx.Create(&members).Error
	})
}

// GetChannelByID retrieves a channel by ID
func (r *PostgresChannelRepository) GetChannelByID(id uint) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.First(&channel, id).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

// GetChannelsForUser retrieves every channel the user is a member of,
// plus public channels.
func (r *PostgresChannelRepository) GetChannelsForUser(userID uint) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.
		Joins("LEFT JOIN channel_members ON channel_members.channel_id = channels.id AND channel_members.user_id = ?", userID).
		Where("channels.is_private = false OR channel_members.id IS NOT NULL").
		Order("channels.created_at DESC").
		Find(&channels).Error
	return channels, err
}

// GetMemberIDs returns the user ids of every channel member
func (r *PostgresChannelRepository) GetMemberIDs(channelID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.ChannelMember{}).Where("channel_id = ?", channelID).Pluck("user_id", &ids).Error
	return ids, err
}

// CountMembers returns the channel's member count
func (r *PostgresChannelRepository) CountMembers(channelID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ChannelMember{}).Where("channel_id = ?", channelID).Count(&count).Error
	return count, err
}

// IsMember checks whether the user belongs to the channel
func (r *PostgresChannelRepository) IsMember(channelID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ChannelMember{}).Where("channel_id = ? AND user_id = ?", channelID, userID).Count(&count).Error
	return count > 0, err
}

// AddMember adds a user to a channel; re-adding is a no-op
func (r *PostgresChannelRepository) AddMember(channelID, userID uint) error {
	existing, err := r.IsMember(channelID, userID)
	if err != nil {
		return err
	}
	if existing {
		return nil
	}
	return r.db.Create(&models.ChannelMember{ChannelID: channelID, UserID: userID}).Error
}
