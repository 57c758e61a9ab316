package repositories

import (
	"errors"

	"github.com/arafat90/clientflow/backend/internal/models"
	"gorm.io/gorm"
)

// ThreadRepository defines the interface for DM thread data operations
type ThreadRepository interface {
	GetOrCreateThread(userA, userB uint) (*models.DirectMessageThread, error)
	GetThreadByID(id uint) (*models.DirectMessageThread, error)
	GetThreadsForUser(userID uint) ([]models.DirectMessageThread, error)
}

// PostgresThreadRepository implements ThreadRepository for PostgreSQL
type PostgresThreadRepository struct {
	db *gorm.DB
}

// NewPostgresThreadRepository creates a new PostgresThreadRepository
func NewPostgresThreadRepository(db *gorm.DB) *PostgresThreadRepository {
	return &PostgresThreadRepository{db: db}
}

// GetOrCreateThread returns the thread for the pair, creating it lazily
// on first intent. The pair is normalized so (a,b) and (b,a) share a row.
func (r *PostgresThreadRepository) GetOrCreateThread(userA, userB uint) (*models.DirectMessageThread, error) {
	if userA == userB {
		return nil, errors.New("cannot open a thread with yourself")
	}
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}

	var thread models.DirectMessageThread
	err := r.db.Where("user1_id = ? AND user2_id = ?", lo, hi).First(&thread).Error
	if err == nil {
		return &thread, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	thread = models.DirectMessageThread{User1ID: lo, User2ID: hi}
	if err := r.db.Create(&thread).Error; err != nil {
		// Lost the race against a concurrent first message; re-read.
		var existing models.DirectMessageThread
		if err2 := r.db.Where("user1_id = ? AND user2_id = ?", lo, hi).First(&existing).Error; err2 == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &thread, nil
}

// GetThreadByID retrieves a thread by ID
func (r *PostgresThreadRepository) GetThreadByID(id uint) (*models.DirectMessageThread, error) {
	var thread models.DirectMessageThread
	if err := r.db.First(&thread, id).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

// GetThreadsForUser retrieves every thread the user participates in
func (r *PostgresThreadRepository) GetThreadsForUser(userID uint) ([]models.DirectMessageThread, error) {
	var threads []models.DirectMessageThread
	err := r.db.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&threads).Error
	return threads, err
}
