package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reverselearn/internal/model"
)

// ChatRepo handles MongoDB operations for saved chats
type ChatRepo interface {
	Create(ctx context.Context, chat *model.Chat) (string, error)
	GetByID(ctx context.Context, id string) (*model.Chat, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Chat, error)
	Delete(ctx context.Context, id string) error
}

type chatRepo struct {
	collection *mongo.Collection
}

// NewChatRepo creates a new chat repository
func NewChatRepo(db *mongo.Database) ChatRepo {
	return &chatRepo{
		collection: db.Collection("chats"),
	}
}

func (r *chatRepo) Create(ctx context.Context, chat *model.Chat) (string, error) {
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, chat)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *chatRepo) GetByID(ctx context.Context, id string) (*model.Chat, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var chat model.Chat
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&chat)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	chat.ID = id
	return &chat, nil
}

func (r *chatRepo) ListByUser(ctx context.Context, userID string) ([]*model.Chat, error) {
	opts := options.Find().SetSort(bson.M{"updatedAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chats []*model.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *chatRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
