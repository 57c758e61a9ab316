package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrMessageNotFound is returned when a message id resolves to nothing.
var ErrMessageNotFound = fmt.Errorf("message not found")

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	GetChannelMessages(ctx context.Context, channelID uint, limit int64) ([]models.Message, error)
	GetThreadMessages(ctx context.Context, threadID uint, limit int64) ([]models.Message, error)
	GetMessagesByIDs(ctx context.Context, ids []string) ([]models.Message, error)
	UpdateContent(ctx context.Context, id, content string) error
	SoftDelete(ctx context.Context, id string) error
	SetPinned(ctx context.Context, id string, pinned bool) error
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

// CreateMessage inserts a new message document
func (r *MongoMessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	message.UpdatedAt = message.CreatedAt
	_, err := r.collection.InsertOne(ctx, message)
	return err
}

// GetMessageByID retrieves a message by its hex id
func (r *MongoMessageRepository) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid message ID format: %w", err)
	}

	var message models.Message
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// GetChannelMessages retrieves the newest messages of a channel,
// returned oldest first for rendering.
func (r *MongoMessageRepository) GetChannelMessages(ctx context.Context, channelID uint, limit int64) ([]models.Message, error) {
	return r.listConversation(ctx, bson.M{"channel_id": channelID}, limit)
}

// GetThreadMessages retrieves the newest messages of a DM thread,
// returned oldest first for rendering.
func (r *MongoMessageRepository) GetThreadMessages(ctx context.Context, threadID uint, limit int64) ([]models.Message, error) {
	return r.listConversation(ctx, bson.M{"thread_id": threadID}, limit)
}

func (r *MongoMessageRepository) listConversation(ctx context.Context, filter bson.M, limit int64) ([]models.Message, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	// Newest-N fetched descending; flip to oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// GetMessagesByIDs retrieves the messages matching the given hex ids
func (r *MongoMessageRepository) GetMessagesByIDs(ctx context.Context, ids []string) ([]models.Message, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	if len(objIDs) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// UpdateContent replaces the message content and flags it edited
func (r *MongoMessageRepository) UpdateContent(ctx context.Context, id, content string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid message ID format: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"content":    content,
		"is_edited":  true,
		"updated_at": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// SoftDelete tombstones the message: the row survives (reactions and
// delivery state stay queryable) but the content is blanked.
func (r *MongoMessageRepository) SoftDelete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid message ID format: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"content":    "",
		"is_deleted": true,
		"updated_at": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// SetPinned sets the pinned flag; repeating the same value is a no-op
func (r *MongoMessageRepository) SetPinned(ctx context.Context, id string, pinned bool) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid message ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"is_pinned": pinned}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}
