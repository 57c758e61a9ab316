package repositories

import (
	"github.com/arafat90/clientflow/backend/internal/models"
	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	GetReaction(messageID string, userID uint, emoji string) (*models.Reaction, error)
	CreateReaction(reaction *models.Reaction) error
	DeleteReaction(messageID string, userID uint, emoji string) error
	GetByMessageIDs(messageIDs []string) ([]models.Reaction, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

// GetReaction retrieves the (message, user, emoji) tuple if it exists
func (r *PostgresReactionRepository) GetReaction(messageID string, userID uint, emoji string) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).First(&reaction).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

// CreateReaction creates a new reaction tuple
func (r *PostgresReactionRepository) CreateReaction(reaction *models.Reaction) error {
	return r.db.Create(reaction).Error
}

// DeleteReaction removes the tuple; deleting an absent tuple is a no-op
func (r *PostgresReactionRepository) DeleteReaction(messageID string, userID uint, emoji string) error {
	return r.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&models.Reaction{}).Error
}

// GetByMessageIDs retrieves all reactions of the given messages
func (r *PostgresReactionRepository) GetByMessageIDs(messageIDs []string) ([]models.Reaction, error) {
	var reactions []models.Reaction
	if len(messageIDs) == 0 {
		return reactions, nil
	}
	err := r.db.Where("message_id IN ?", messageIDs).Order("created_at ASC").Find(&reactions).Error
	return reactions, err
}
